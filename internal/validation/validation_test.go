package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/movie-booking/internal/apperror"
)

type sample struct {
	Name    string   `json:"theatername" validate:"required,min=2,max=100"`
	Screens int      `json:"screens" validate:"required,min=1,max=20"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Cast    []string `json:"cast" validate:"omitempty,min=1,dive,required"`
	Ref     string   `json:"movieId" validate:"omitempty,objectid"`
	Role    string   `json:"role" validate:"omitempty,oneof=admin user"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantMsg string
	}{
		{name: "valid", in: sample{Name: "PVR", Screens: 3}},
		{name: "missing name", in: sample{Screens: 3}, wantMsg: "theatername is required"},
		{name: "short name", in: sample{Name: "P", Screens: 3}, wantMsg: "theatername must be at least 2 characters"},
		{name: "too many screens", in: sample{Name: "PVR", Screens: 21}, wantMsg: "screens must be at most 20"},
		{name: "bad email", in: sample{Name: "PVR", Screens: 1, Email: "nope"}, wantMsg: "email must be a valid email address"},
		{name: "bad id", in: sample{Name: "PVR", Screens: 1, Ref: "123"}, wantMsg: "movieId must be a valid id"},
		{name: "bad role", in: sample{Name: "PVR", Screens: 1, Role: "root"}, wantMsg: "role must be one of [admin user]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindValidation))
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}
