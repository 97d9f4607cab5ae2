package platform

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/rpggio/crmcal/internal/domain/navigation"
)

// PageNavigator builds record page references under a base URL.
type PageNavigator struct {
	base string
}

var _ navigation.Navigator = (*PageNavigator)(nil)

// NewPageNavigator creates a navigator rooted at baseURL, which may be empty
// for relative links.
func NewPageNavigator(baseURL string) *PageNavigator {
	return &PageNavigator{base: strings.TrimRight(baseURL, "/")}
}

// OpenRecordCreate addresses the create page for object, prefilled with
// defaults when any are given.
func (n *PageNavigator) OpenRecordCreate(_ context.Context, object string, defaults map[string]string) (navigation.PageReference, error) {
	ref := navigation.PageReference{
		Type: "standard__objectPage",
		Attributes: map[string]string{
			"objectApiName": object,
			"actionName":    "new",
		},
		URL: n.base + "/lightning/o/" + url.PathEscape(object) + "/new",
	}
	if encoded := EncodeDefaultFieldValues(defaults); encoded != "" {
		ref.State = map[string]string{"defaultFieldValues": encoded}
		ref.URL += "?defaultFieldValues=" + encoded
	}
	return ref, nil
}

// OpenRecordView addresses a record's detail page.
func (n *PageNavigator) OpenRecordView(_ context.Context, id, object string) (navigation.PageReference, error) {
	ref := navigation.PageReference{
		Type: "standard__recordPage",
		Attributes: map[string]string{
			"recordId":   id,
			"actionName": "view",
		},
	}
	if object != "" {
		ref.Attributes["objectApiName"] = object
		ref.URL = n.base + "/lightning/r/" + url.PathEscape(object) + "/" + url.PathEscape(id) + "/view"
	} else {
		ref.URL = n.base + "/lightning/r/" + url.PathEscape(id) + "/view"
	}
	return ref, nil
}

// EncodeDefaultFieldValues renders defaults as Field=value pairs joined by
// commas, sorted by field, with each value query-escaped.
func EncodeDefaultFieldValues(defaults map[string]string) string {
	if len(defaults) == 0 {
		return ""
	}
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+url.QueryEscape(defaults[k]))
	}
	return strings.Join(parts, ",")
}
