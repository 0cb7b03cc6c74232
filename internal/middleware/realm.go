package middleware

import (
	"errors"
	"regexp"

	"backend_resources/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var realmName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type realmHeader struct {
	Realm string `validate:"required,max=255,realm"`
}

func newRealmValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("realm", func(fl validator.FieldLevel) bool {
		return realmName.MatchString(fl.Field().String())
	})
	return v
}

// RealmResolver picks the identity provider realm for the request from the realm header,
// falling back to defaultRealm. It must run after AuthMiddleware: malformed names are
// rejected with 422, and realms other than the caller's own and those in allowed with 403.
func RealmResolver(defaultRealm string, allowed []string) gin.HandlerFunc {
	validate := newRealmValidator()
	permitted := append([]string{defaultRealm}, allowed...)
	return func(c *gin.Context) {
		principal := common.GetPrincipalFromContext(c)
		if principal == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authentication is required."))
			return
		}

		realm := c.GetHeader(common.RealmHeader)
		if realm == "" {
			realm = defaultRealm
		}

		if err := validate.Struct(realmHeader{Realm: realm}); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
				return
			}
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid realm header."))
			return
		}

		if !principal.CanTarget(realm, permitted) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You may not manage users in this realm."))
			return
		}

		c.Set(common.RealmKey, realm)
		c.Next()
	}
}
