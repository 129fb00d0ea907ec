// internal/app/features/orgs/logo.go
package orgs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	apierrors "github.com/averymorin/tenantkit/internal/app/features/errors"
	organizationstore "github.com/averymorin/tenantkit/internal/app/store/organizations"
	"github.com/averymorin/tenantkit/internal/app/system/authz"
	"github.com/averymorin/tenantkit/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxLogoBytes caps logo uploads at 8MB.
const maxLogoBytes = 8 << 20

// BlobStore is the slice of blob storage the logo endpoints need. The
// backends in waffle's storage pantry carry these methods, as does the
// app's local-disk store.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
}

// HandleUploadLogo handles POST /orgs/{orgID}/logo. Accepts a multipart form
// with a "logo" image file, stores the blob, and points the organization at
// the new reference. The previous blob is deleted inside UpdateProfile.
func (h *Handler) HandleUploadLogo(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil || header == nil || header.Size == 0 {
		apierrors.WriteError(w, http.StatusBadRequest, "logo file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		apierrors.WriteError(w, http.StatusBadRequest, "logo must be an image file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	ref, err := uploadOrgLogo(ctx, h.Storage, header.Filename, file, contentType)
	if err != nil {
		h.Log.Error("logo upload failed", zap.Error(err))
		apierrors.WriteError(w, http.StatusInternalServerError, "logo upload failed")
		return
	}

	if err := h.Directory.UpdateProfile(ctx, orgID, userID, organizationstore.Update{LogoRef: &ref}); err != nil {
		// The org record never learned about the blob, so clean it up.
		if delErr := h.Storage.Delete(ctx, ref); delErr != nil {
			h.Log.Warn("failed to delete orphaned logo", zap.String("ref", ref), zap.Error(delErr))
		}
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]string{"logo_ref": ref})
}

// HandleDeleteLogo handles DELETE /orgs/{orgID}/logo.
func (h *Handler) HandleDeleteLogo(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	empty := ""
	if err := h.Directory.UpdateProfile(ctx, orgID, userID, organizationstore.Update{LogoRef: &empty}); err != nil {
		apierrors.WriteDomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadOrgLogo stores a logo blob under a unique path: logos/YYYY/MM/uuid.ext.
func uploadOrgLogo(ctx context.Context, store BlobStore, filename string, reader io.Reader, contentType string) (string, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("logos/%04d/%02d", now.Year(), now.Month())
	ext := filepath.Ext(filename)
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String()[:8], ext)
	path := filepath.ToSlash(filepath.Join(dateDir, uniqueName))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}
	return path, nil
}
