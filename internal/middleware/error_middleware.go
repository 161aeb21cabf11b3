package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
	"github.com/studyhub-il/studyhub/internal/pkg/apperrors"
	"github.com/studyhub-il/studyhub/internal/pkg/logger"
)

type errorMapping struct {
	targets []error
	status  int
	code    dto.ErrorCode
	message string
}

// Ordered: the first matching entry wins.
var errorMappings = []errorMapping{
	{[]error{apperrors.ErrUserNotFound}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "המשתמש לא נמצא"},
	{[]error{apperrors.ErrCourseNotFound}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "הקורס לא נמצא"},
	{[]error{apperrors.ErrSummaryNotFound}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "הסיכום לא נמצא"},
	{[]error{apperrors.ErrForumPostNotFound}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "הפוסט לא נמצא"},
	{[]error{apperrors.ErrToolNotFound}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "הכלי לא נמצא"},
	{[]error{apperrors.ErrResourceNotFound}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "המשאב לא נמצא"},

	{[]error{apperrors.ErrPermissionDenied}, http.StatusForbidden, dto.ErrorCodeForbidden, "אין לך הרשאה לבצע פעולה זו"},

	{[]error{apperrors.ErrInvalidCredentials}, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "אימייל או סיסמה שגויים"},
	{[]error{apperrors.ErrTokenExpired}, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "תוקף הטוקן פג"},
	{[]error{apperrors.ErrTokenInvalid, apperrors.ErrTokenNotFound, apperrors.ErrTokenRevoked}, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "טוקן לא תקין"},
	{[]error{apperrors.ErrUnauthorized}, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "נדרשת התחברות"},

	{[]error{apperrors.ErrEmailAlreadyExists}, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "משתמש עם אימייל זה כבר קיים"},
	{[]error{apperrors.ErrCourseCodeAlreadyExists}, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "קוד הקורס כבר קיים"},
	{[]error{apperrors.ErrResourceAlreadyExists, apperrors.ErrConflict}, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "המשאב כבר קיים"},

	{[]error{apperrors.ErrAlreadyFavorite}, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "הפריט כבר נמצא במועדפים"},
	{[]error{apperrors.ErrAlreadySubscribed}, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "כבר נרשמת לפוסט זה"},
	{[]error{apperrors.ErrInvalidEmailToken}, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "קישור האימות אינו תקף"},
	{[]error{apperrors.ErrEmailAlreadyVerified}, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "האימייל כבר אומת"},
	{[]error{apperrors.ErrInvalidPasswordResetToken}, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "קישור איפוס הסיסמה אינו תקף"},
	{[]error{apperrors.ErrFileRequired}, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "לא הועלה קובץ"},
	{[]error{apperrors.ErrFileTooLarge}, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "הקובץ גדול מדי"},
	{[]error{apperrors.ErrFileTypeInvalid}, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "סוג הקובץ אינו נתמך"},
	{[]error{apperrors.ErrTooManyFiles}, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "יותר מדי קבצים"},
	{[]error{apperrors.ErrValidationFailed}, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "הנתונים שנשלחו אינם תקינים"},
	{[]error{apperrors.ErrBadRequest}, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "בקשה לא תקינה"},

	{[]error{apperrors.ErrTooManyRequests}, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "יותר מדי בקשות, נסה שוב מאוחר יותר"},
}

// HandleAPIError writes the failure envelope for err. Messages carried by
// apperrors.CustomError take precedence over the generic ones.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorResponse(err)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled error")
		if gin.Mode() != gin.ReleaseMode {
			detail.WithDebugInfo("%v", err)
		}
	}

	c.AbortWithStatusJSON(status, dto.NewFailureResponse(detail))
}

func errorResponse(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !apperrors.Is(err, m.targets[0], m.targets[1:]...) {
			continue
		}
		message := m.message
		if msg, ok := apperrors.UserMessage(err); ok {
			message = msg
		}
		detail := dto.NewErrorDetail(m.code, message)
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Details != nil {
			if field, ok := ce.Details["field"].(string); ok {
				detail.WithField(field)
			}
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "שגיאת שרת פנימית")
}
