package service

import (
	"github.com/universeos/dashboard/internal/core/domain"
)

// Catalog is the closed registry of widget type descriptors. It is populated
// once at startup and immutable afterwards; there is no dynamic registration.
type Catalog struct {
	descriptors []domain.WidgetDescriptor
	index       map[string]domain.WidgetDescriptor
}

// NewCatalog builds a catalog from descriptors in declaration order. A
// duplicate type tag keeps the first declaration.
func NewCatalog(descriptors ...domain.WidgetDescriptor) *Catalog {
	c := &Catalog{
		index: make(map[string]domain.WidgetDescriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if _, exists := c.index[d.Type]; exists {
			continue
		}
		c.descriptors = append(c.descriptors, d)
		c.index[d.Type] = d
	}
	return c
}

// DefaultCatalog returns the stock widget types and their permission gates.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		domain.WidgetDescriptor{Type: "AIRecommendationPanel", Title: "AI Insights", RequiredPermissions: []string{"ai:access_models"}},
		domain.WidgetDescriptor{Type: "BioSignalGraph", Title: "Bio Signals", RequiredPermissions: []string{"bio:access_data"}},
		domain.WidgetDescriptor{Type: "BlockchainStatus", Title: "Ledger", RequiredPermissions: []string{}},
		domain.WidgetDescriptor{Type: "QuantumStatusMonitor", Title: "Quantum Grid", RequiredPermissions: []string{"quantum:run_jobs"}},
		domain.WidgetDescriptor{Type: "TaskTracker", Title: "Task Tracker", RequiredPermissions: []string{"dashboard:view"}},
		domain.WidgetDescriptor{Type: "CommunicationFeed", Title: "Communication Feed", RequiredPermissions: []string{"dashboard:view"}},
	)
}

// Descriptor returns the descriptor for a type tag.
func (c *Catalog) Descriptor(widgetType string) (domain.WidgetDescriptor, bool) {
	d, ok := c.index[widgetType]
	return d, ok
}

// AvailableTypes returns the type tags whose required permissions are all
// satisfied by the session, in catalog-declaration order.
func (c *Catalog) AvailableTypes(sess *domain.Session) []string {
	var types []string
	for _, d := range c.descriptors {
		if c.permitted(sess, d) {
			types = append(types, d.Type)
		}
	}
	return types
}

// Descriptors returns the permitted descriptors in declaration order.
func (c *Catalog) Descriptors(sess *domain.Session) []domain.WidgetDescriptor {
	var out []domain.WidgetDescriptor
	for _, d := range c.descriptors {
		if c.permitted(sess, d) {
			out = append(out, d)
		}
	}
	return out
}

func (c *Catalog) permitted(sess *domain.Session, d domain.WidgetDescriptor) bool {
	for _, p := range d.RequiredPermissions {
		if !sess.HasPermission(p) {
			return false
		}
	}
	return true
}
