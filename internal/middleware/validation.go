package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/studyhub-il/studyhub/internal/app/models/dto"
)

// HandleValidationError answers a failed ShouldBind* with 400 and one
// entry per invalid field.
func HandleValidationError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "הנתונים שנשלחו אינם תקינים").
		WithSeverity(dto.ErrorSeverityWarning)

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		fields := dto.NewValidationErrors()
		for _, fe := range verrs {
			fields.AddError(fe.Field(), formatValidationError(fe))
		}
		if fields.HasErrors() {
			detail.Message = fields.Errors[0].Message
			detail.WithField(fields.Errors[0].Field)
		}
		detail.WithDetails(fields.Errors)
	case errors.As(err, &syntaxErr):
		detail.Message = "גוף הבקשה אינו JSON תקין"
	case errors.As(err, &typeErr):
		detail.Message = "סוג שדה שגוי: " + typeErr.Field
		detail.WithField(typeErr.Field)
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewFailureResponse(detail))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "השדה " + e.Field() + " הוא חובה"
	case "min":
		return "השדה " + e.Field() + " קצר מדי (מינימום " + e.Param() + ")"
	case "max":
		return "השדה " + e.Field() + " ארוך מדי (מקסימום " + e.Param() + ")"
	case "email":
		return "כתובת אימייל לא תקינה"
	case "url", "httpurl":
		return "כתובת URL לא תקינה (נדרש http או https)"
	case "oneof":
		return "השדה " + e.Field() + " חייב להיות אחד מ: " + e.Param()
	case "gte", "lte":
		return "הערך של " + e.Field() + " מחוץ לטווח המותר"
	case "notblank":
		return "השדה " + e.Field() + " לא יכול להיות ריק"
	default:
		return "השדה " + e.Field() + " אינו תקין"
	}
}
