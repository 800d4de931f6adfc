package domain

import "fmt"

// LookupKind names one of the backend's reference lists.
type LookupKind string

const (
	LookupStatuses   LookupKind = "statuses"
	LookupCategories LookupKind = "categories"
	LookupSuppliers  LookupKind = "suppliers"
)

func ParseLookupKind(s string) (LookupKind, error) {
	switch k := LookupKind(s); k {
	case LookupStatuses, LookupCategories, LookupSuppliers:
		return k, nil
	}
	return "", fmt.Errorf("unknown lookup kind %q", s)
}

// Option is one entry of a lookup list (status, category or supplier).
type Option struct {
	ID   int    `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

type CategoryCreate struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CategoryEdit struct {
	Name string `json:"name"`
}

type SupplierCreate struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type SupplierEdit struct {
	Name string `json:"name"`
}
