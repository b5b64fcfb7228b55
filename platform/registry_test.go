package platform

import (
	"context"
	"testing"

	"github.com/dealhound/dealhound/models"
)

type namedAdapter struct {
	name string
}

func (a *namedAdapter) Name() string                             { return a.name }
func (a *namedAdapter) Initialize(context.Context) error         { return nil }
func (a *namedAdapter) Cleanup(context.Context) error            { return nil }
func (a *namedAdapter) AddToCart(context.Context, *models.Offer, string) error {
	return nil
}
func (a *namedAdapter) Search(context.Context, models.Criteria) ([]*models.Offer, error) {
	return nil, nil
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r, err := NewRegistry(&namedAdapter{name: "Swiggy"}, &namedAdapter{name: "Zomato"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "Swiggy" || names[1] != "Zomato" {
		t.Fatalf("names=%v, want [Swiggy Zomato]", names)
	}

	if a, ok := r.Lookup("Zomato"); !ok || a.Name() != "Zomato" {
		t.Fatalf("lookup Zomato failed")
	}
	if _, ok := r.Lookup("UberEats"); ok {
		t.Fatalf("lookup of unregistered platform should fail")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry(&namedAdapter{name: "Swiggy"}, &namedAdapter{name: "Swiggy"}); err == nil {
		t.Fatalf("duplicate registration should fail")
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	if _, err := NewRegistry(&namedAdapter{}); err == nil {
		t.Fatalf("empty name should fail")
	}
}
