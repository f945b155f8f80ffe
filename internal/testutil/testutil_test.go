package testutil

import (
	"net/http"
	"testing"
)

func TestNewTestRequest(t *testing.T) {
	req := NewTestRequest(http.MethodGet, "/health")
	if req.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.URL.Path != "/health" {
		t.Errorf("path = %s, want /health", req.URL.Path)
	}
}

func TestUnitSquareTable(t *testing.T) {
	table := UnitSquareTable(t)
	if table.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", table.Len())
	}
	for i := int64(0); i < 4; i++ {
		if table.IndexOf(i) < 0 {
			t.Errorf("tube id %d missing", i)
		}
	}
}
