package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "brainbrowser/pkg/errors"
)

type navigateBody struct {
	PageID string  `json:"pageId" validate:"required,max=8"`
	Delta  float64 `json:"delta" validate:"gte=-1,lte=1"`
	Level  string  `json:"level,omitempty" validate:"omitempty,oneof=debug info"`
	FPS    float64 `validate:"omitempty,gt=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		body    navigateBody
		field   string
		wantErr string
	}{
		{name: "valid", body: navigateBody{PageID: "home", Delta: 0.1}},
		{name: "missing page", body: navigateBody{}, field: "pageId", wantErr: "pageId is required"},
		{name: "page too long", body: navigateBody{PageID: "a-very-long-page"}, field: "pageId", wantErr: "pageId must be at most 8 characters"},
		{name: "delta too large", body: navigateBody{PageID: "home", Delta: 2}, field: "delta", wantErr: "delta must be at most 1"},
		{name: "bad level", body: navigateBody{PageID: "home", Level: "trace"}, field: "level", wantErr: "level must be one of: debug info"},
		{name: "untagged field", body: navigateBody{PageID: "home", FPS: -1}, field: "FPS", wantErr: "FPS must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.body)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)

			appErr := pkgerrors.GetAppError(err)
			assert.Equal(t, "INVALID_FIELDS", appErr.Code)
			assert.Equal(t, tt.wantErr, appErr.Details[tt.field])
		})
	}
}
