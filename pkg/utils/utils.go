package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// IsEmpty checks if a string is empty.
func IsEmpty(s string) bool {
	return s == ""
}

func GetTraceID(c *gin.Context) (string, error) {
	traceID := c.GetString(pkg.TraceId)
	if IsEmpty(traceID) {
		return "", errors.New("trace id is empty")
	}
	return traceID, nil
}

// ParseStructEnv binds env vars to struct fields using a mapstructure tag
func ParseStructEnv(cfg interface{}) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if err := viper.BindEnv(tag); err != nil {
			return err
		}
	}
	return viper.Unmarshal(cfg)
}

// FormatConfigErrors turns validator errors into a single readable error and logs each offender.
func FormatConfigErrors(logger *zap.Logger, err error, cfg interface{}) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	var missing []string
	for _, fe := range vErrs {
		logger.Error("invalid config value",
			zap.String("field", fe.Field()),
			zap.String("rule", fe.Tag()),
		)
		missing = append(missing, fe.Field())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(missing, ", "))
}

// FormatMB renders a megabyte resource value for display; zero means unlimited.
func FormatMB(mb int) string {
	if mb == 0 {
		return "Unlimited"
	}
	return fmt.Sprintf("%gGB", float64(mb)/1000)
}

// FormatCPU renders a cpu percentage for display; zero means unlimited.
func FormatCPU(pct int) string {
	if pct == 0 {
		return "Unlimited"
	}
	return fmt.Sprintf("%d%%", pct)
}

// TitleCase uppercases the first rune, matching the panel display-name convention.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
