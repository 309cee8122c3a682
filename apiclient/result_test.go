package apiclient

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestFetch_States(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func(context.Context) ([]Module, error)
		want State
	}{
		{"loaded", func(context.Context) ([]Module, error) { return []Module{{ID: "m1"}}, nil }, Loaded},
		{"empty slice", func(context.Context) ([]Module, error) { return []Module{}, nil }, Empty},
		{"nil slice", func(context.Context) ([]Module, error) { return nil, nil }, Empty},
		{"not found", func(context.Context) ([]Module, error) {
			return nil, &HTTPError{Method: "GET", Path: "/modules/", StatusCode: http.StatusNotFound}
		}, NotFound},
		{"server error", func(context.Context) ([]Module, error) {
			return nil, &HTTPError{Method: "GET", Path: "/modules/", StatusCode: http.StatusInternalServerError}
		}, Failed},
		{"transport error", func(context.Context) ([]Module, error) { return nil, errors.New("connection refused") }, Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fetch(ctx, tt.fn)
			if got.State != tt.want {
				t.Errorf("expected state %s, got %s", tt.want, got.State)
			}
		})
	}
}

func TestFetch_NilPointerIsEmpty(t *testing.T) {
	got := Fetch(context.Background(), func(context.Context) (*Module, error) { return nil, nil })
	if got.State != Empty {
		t.Errorf("expected empty, got %s", got.State)
	}
}

func TestResult_Reason(t *testing.T) {
	r := Result[int]{State: Failed, Err: &HTTPError{Method: "GET", Path: "/x/", StatusCode: 500}}
	if r.Reason() != "GET /x/: 500 Internal Server Error" {
		t.Errorf("unexpected reason %q", r.Reason())
	}

	r = Result[int]{State: Failed, Err: context.DeadlineExceeded}
	if r.Reason() != "the backend did not answer in time" {
		t.Errorf("unexpected reason %q", r.Reason())
	}

	if (Result[int]{State: Loaded}).Reason() != "" {
		t.Error("expected empty reason for loaded result")
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidStatus("MAYBE") || ValidStatus("yes") {
		t.Error("unexpected valid status")
	}
}

func TestProformaItem_Requirement(t *testing.T) {
	if got := (ProformaItem{Text: "short", RequirementText: "long"}).Requirement(); got != "long" {
		t.Errorf("got %q", got)
	}
	if got := (ProformaItem{Text: "short"}).Requirement(); got != "short" {
		t.Errorf("got %q", got)
	}
}
