package filestorage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
)

// UploadRule restricts what an endpoint accepts. Types maps a lower-case
// extension to the MIME types clients may declare for it.
type UploadRule struct {
	MaxSize int64
	Types   map[string][]string
	Message string
}

// DocumentRule accepts PDF and Word documents up to 10MB
var DocumentRule = UploadRule{
	MaxSize: 10 << 20,
	Types: map[string][]string{
		".pdf":  {"application/pdf"},
		".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	},
	Message: "רק קבצי PDF ו-DOCX מותרים",
}

// ImageRule accepts common web images up to 5MB
var ImageRule = UploadRule{
	MaxSize: 5 << 20,
	Types: map[string][]string{
		".jpg":  {"image/jpeg"},
		".jpeg": {"image/jpeg"},
		".png":  {"image/png"},
		".gif":  {"image/gif"},
		".webp": {"image/webp"},
	},
	Message: "רק קבצי תמונה מותרים (JPEG, PNG, GIF, WebP)",
}

// MaxForumImages is the number of images a forum post may carry
const MaxForumImages = 5

// Validate checks size, extension and the declared content type
func (r UploadRule) Validate(fh *multipart.FileHeader) error {
	if fh == nil {
		return apperrors.NewCustomError(apperrors.ErrFileRequired, "לא הועלה קובץ")
	}

	if r.MaxSize > 0 && fh.Size > r.MaxSize {
		return apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("הקובץ גדול מדי (מקסימום %dMB)", r.MaxSize>>20))
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	allowed, ok := r.Types[ext]
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrFileTypeInvalid, r.Message)
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0]))
	if declared == "" || declared == "application/octet-stream" {
		return nil
	}
	for _, m := range allowed {
		if declared == m {
			return nil
		}
	}
	return apperrors.NewCustomError(apperrors.ErrFileTypeInvalid, r.Message)
}
