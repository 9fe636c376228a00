package submission

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks malformed input rejected before any ledger call.
var ErrValidation = errors.New("validation failed")

const (
	maxAssets     = 2
	maxAssetBytes = 10 << 20
	maxTitleLen   = 200
)

// allowedAssetTypes is the content-type allow list for uploaded assets.
var allowedAssetTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"video/mp4":  true,
}

func validateInput(in Input) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(in.Title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrValidation, maxTitleLen)
	}
	if in.RequiredCredits <= 0 {
		return fmt.Errorf("%w: required_credits must be > 0", ErrValidation)
	}
	if len(in.Assets) > maxAssets {
		return fmt.Errorf("%w: at most %d assets per submission", ErrValidation, maxAssets)
	}
	for _, a := range in.Assets {
		if a.Name == "" || strings.Contains(a.Name, "..") || strings.ContainsRune(a.Name, '/') {
			return fmt.Errorf("%w: invalid asset name %q", ErrValidation, a.Name)
		}
		if !allowedAssetTypes[a.ContentType] {
			return fmt.Errorf("%w: content type %q is not allowed", ErrValidation, a.ContentType)
		}
		if len(a.Data) == 0 {
			return fmt.Errorf("%w: asset %q is empty", ErrValidation, a.Name)
		}
		if len(a.Data) > maxAssetBytes {
			return fmt.Errorf("%w: asset %q exceeds size ceiling", ErrValidation, a.Name)
		}
	}
	return nil
}
