package domain

// WidgetDescriptor describes one widget type the catalog offers, gated by
// the permissions a session must hold to see it.
type WidgetDescriptor struct {
	Type                string   `json:"type"`
	Title               string   `json:"title"`
	RequiredPermissions []string `json:"required_permissions"`
}
