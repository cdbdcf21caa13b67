package handler

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"lavanderia/internal/apierror"
	"lavanderia/internal/model"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

var (
	reMaiuscula = regexp.MustCompile(`[A-Z]`)
	reMinuscula = regexp.MustCompile(`[a-z]`)
	reDigito    = regexp.MustCompile(`[0-9]`)
	reEspecial  = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		nome := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if nome == "-" || nome == "" {
			return fld.Name
		}
		return nome
	})

	_ = validate.RegisterValidation("senhaforte", func(fl validator.FieldLevel) bool {
		return senhaForte(fl.Field().String())
	})
	_ = validate.RegisterValidation("unidade", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, u := range model.Unidades {
			if u == v {
				return true
			}
		}
		return false
	})
}

// senhaForte: at least 8 characters with upper, lower, digit and a special character.
func senhaForte(s string) bool {
	return utf8.RuneCountInString(s) >= 8 &&
		reMaiuscula.MatchString(s) &&
		reMinuscula.MatchString(s) &&
		reDigito.MatchString(s) &&
		reEspecial.MatchString(s)
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetros inválidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(ves))
		for _, fe := range ves {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads the :id path parameter. Writes 400 and returns false when it
// is not a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	return parseParam(c, "id")
}

func parseParam(c *gin.Context, nome string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(nome))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// responderErro translates service errors into HTTP answers. Anything it does
// not recognise is handed to the ErrorHandler middleware as a 500.
func responderErro(c *gin.Context, err error) {
	var ev *service.ErroValidacao
	switch {
	case errors.As(err, &ev):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(ev.Campos))
	case errors.Is(err, service.ErrNaoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New("Registro não encontrado"))
	case errors.Is(err, service.ErrProibido):
		c.JSON(http.StatusForbidden, apierror.New(service.ErrProibido.Error()))
	case errors.Is(err, service.ErrSemProximoStatus),
		errors.Is(err, service.ErrTransicaoInvalida),
		errors.Is(err, service.ErrConflito):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCredenciaisInvalidas),
		errors.Is(err, service.ErrPerfilNaoEncontrado),
		errors.Is(err, service.ErrSessaoEncerrada),
		errors.Is(err, service.ErrTokenInvalido):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
