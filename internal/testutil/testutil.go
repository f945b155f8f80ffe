// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wcd-data/eventdisplay/internal/sensors"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// UnitSquareTable returns a 4-sensor table forming a unit square in the XY
// plane at z=0: a tiny geometry with known distances (sides 1, diagonals
// sqrt 2).
func UnitSquareTable(t *testing.T) *sensors.Table {
	t.Helper()
	table, err := sensors.NewTable([]sensors.Sensor{
		{TubeID: 0, X: 0, Y: 0, Z: 0},
		{TubeID: 1, X: 1, Y: 0, Z: 0},
		{TubeID: 2, X: 1, Y: 1, Z: 0},
		{TubeID: 3, X: 0, Y: 1, Z: 0},
	})
	if err != nil {
		t.Fatalf("build unit square table: %v", err)
	}
	return table
}
