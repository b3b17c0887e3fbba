package models

import (
	"fmt"
	"regexp"
	"time"
)

// Conditional field requirements are declared as rule tables instead of nested
// conditionals so every variant can be exercised in isolation. Evaluation
// order follows required → conditionally required → syntax; all failing rules
// are reported, not just the first one.

// Condition gates a rule on another field of the same variant holding one of
// the listed values. And chains a further clause that must also hold.
type Condition struct {
	Field  string
	Values []string
	And    *Condition
	// Reason is appended to the error message, e.g. "cuando 'tipo_reporte' es '1' (Robo)".
	Reason string
}

func (c Condition) holds(fields FieldSet) bool {
	got := fields[c.Field]
	if got == "" {
		return false
	}
	match := false
	for _, v := range c.Values {
		if got == v {
			match = true
			break
		}
	}
	if !match {
		return false
	}
	if c.And != nil {
		return c.And.holds(fields)
	}
	return true
}

// NotCondition gates a rule on another field holding anything except the
// given value (used for the authorized-user block on modifications).
type NotCondition struct {
	Field  string
	Not    string
	Reason string
}

// FieldRule describes one declarative constraint over a request field.
type FieldRule struct {
	Field         string
	Required      bool
	RequiredIf    *Condition
	RequiredIfNot *NotCondition
	Pattern       *regexp.Regexp
	PatternMsg    string
	Check         func(value string) string
}

func (r FieldRule) evaluate(fields FieldSet) []string {
	value := fields[r.Field]

	var errs []string
	switch {
	case r.Required && value == "":
		errs = append(errs, fmt.Sprintf("El campo '%s' es obligatorio.", r.Field))
	case r.RequiredIf != nil && value == "" && r.RequiredIf.holds(fields):
		errs = append(errs, fmt.Sprintf("El campo '%s' es obligatorio %s.", r.Field, r.RequiredIf.Reason))
	case r.RequiredIfNot != nil && value == "" && fields[r.RequiredIfNot.Field] != r.RequiredIfNot.Not:
		errs = append(errs, fmt.Sprintf("El campo '%s' es obligatorio %s.", r.Field, r.RequiredIfNot.Reason))
	}

	if value == "" {
		return errs
	}
	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		errs = append(errs, r.PatternMsg)
	}
	if r.Check != nil {
		if msg := r.Check(value); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

// Evaluate runs a rule table against a field set and returns every violation.
func Evaluate(fields FieldSet, rules []FieldRule) []string {
	var errs []string
	for _, rule := range rules {
		errs = append(errs, rule.evaluate(fields)...)
	}
	return errs
}

var (
	imeiPattern  = regexp.MustCompile(`^[0-9]{15}$`)
	fechaPattern = regexp.MustCompile(`^[0-9]{14}$`)
)

// checkFechaReporte validates the YYYYMMDDHHMMSS report-date format beyond
// the digit count: it must parse as a real calendar instant.
func checkFechaReporte(value string) string {
	if !fechaPattern.MatchString(value) {
		return "El campo 'fecha_reporte' debe tener el formato YYYYMMDDHHMMSS (14 dígitos)."
	}
	if _, err := time.Parse("20060102150405", value); err != nil {
		return "El campo 'fecha_reporte' contiene una fecha/hora inválida. Use el formato YYYYMMDDHHMMSS."
	}
	return ""
}

var registroPositivoRules = []FieldRule{
	{Field: "imei", Required: true},
	{Field: "tipo_usuario_propietario", Required: true},
	{Field: "tipo_identificacion_propietario", Required: true},
	{Field: "identificacion_propietario", Required: true},
	{Field: "nombre_razon_social_propietario", Required: true},
	{Field: "direccion_propietario", Required: true},
	{Field: "telefono_contacto_propietario", Required: true},
	{Field: "observaciones", Required: true},
}

var violenceCondition = Condition{
	Field:  "tipo_reporte",
	Values: []string{"1"},
	Reason: "cuando 'tipo_reporte' es '1' (Robo)",
}

// The weapons/minor fields only apply to violent robberies: a volunteered
// empleo_violencia on any other report type carries no follow-up obligations.
var weaponCondition = Condition{
	Field:  "empleo_violencia",
	Values: []string{"1"},
	And:    &Condition{Field: "tipo_reporte", Values: []string{"1"}},
	Reason: "cuando 'tipo_reporte' es '1' y 'empleo_violencia' es '1'",
}

var registroNegativoRules = []FieldRule{
	{Field: "imei", Required: true},
	{Field: "tipo_reporte", Required: true},
	{Field: "nombre_reporte", Required: true},
	{Field: "tipo_identificacion_reporte", Required: true},
	{Field: "identificacion_reporte", Required: true},
	{Field: "telefono_reporte", Required: true},
	{Field: "direccion_reporte", Required: true},
	{Field: "ciudad_reporte", Required: true},
	{Field: "departamento_reporte", Required: true},
	{Field: "correo_electronico", Required: true},
	{Field: "observaciones", Required: true},
	{Field: "empleo_violencia", RequiredIf: &violenceCondition},
	{Field: "utilizacion_armas", RequiredIf: &weaponCondition},
	{Field: "victima_menor_edad", RequiredIf: &weaponCondition},
}

var cancelacionNegativoRules = []FieldRule{
	{Field: "imei", Required: true},
	{Field: "fecha_reporte", Required: true, Check: checkFechaReporte},
	{Field: "observaciones", Required: true},
}

var previousOwnerCondition = Condition{
	Field:  "tipo_modificacion",
	Values: []string{"2", "3"},
	Reason: "cuando 'tipo_modificacion' es '2' o '3'",
}

var authorizedCondition = NotCondition{
	Field:  "tipo_usuario_autorizado",
	Not:    "0",
	Reason: "cuando 'tipo_usuario_autorizado' no es '0'",
}

var modificacionPositivoRules = []FieldRule{
	{Field: "imei", Required: true},
	{Field: "tipo_modificacion", Required: true},
	{Field: "tipo_usuario_propietario", Required: true},
	{Field: "tipo_identificacion_propietario", Required: true},
	{Field: "identificacion_propietario", Required: true},
	{Field: "nombre_razon_social_propietario", Required: true},
	{Field: "direccion_propietario", Required: true},
	{Field: "telefono_contacto_propietario", Required: true},
	{Field: "tipo_usuario_autorizado", Required: true},
	{Field: "tipo_identificacion_propietario_anterior", RequiredIf: &previousOwnerCondition},
	{Field: "identificacion_propietario_anterior", RequiredIf: &previousOwnerCondition},
	{Field: "tipo_identificacion_autorizado", RequiredIfNot: &authorizedCondition},
	{Field: "identificacion_autorizado", RequiredIfNot: &authorizedCondition},
	{Field: "nombre_razon_social_autorizado", RequiredIfNot: &authorizedCondition},
	{Field: "direccion_autorizado", RequiredIfNot: &authorizedCondition},
	{Field: "telefono_contacto_autorizado", RequiredIfNot: &authorizedCondition},
}

var cancelacionPositivoRules = []FieldRule{
	{Field: "imei", Required: true},
	{Field: "tipo_usuario_propietario", Required: true},
	{Field: "tipo_identificacion_propietario", Required: true},
	{Field: "identificacion_propietario", Required: true},
	{Field: "observaciones", Required: true},
}

var consultaNegativaRules = []FieldRule{
	{Field: "imei", Required: true, Pattern: imeiPattern,
		PatternMsg: "El campo 'imei' debe tener exactamente 15 dígitos."},
}

var consultaPositivaRules = []FieldRule{
	{Field: "imei", Required: true, Pattern: imeiPattern,
		PatternMsg: "El campo 'imei' debe tener exactamente 15 dígitos."},
	{Field: "tipo_identificacion_propietario", Required: true},
	{Field: "identificacion_propietario", Required: true},
}

func (r *RegistroPositivoRequest) Validate() []string {
	return Evaluate(r.Fields(), registroPositivoRules)
}

func (r *RegistroNegativoRequest) Validate() []string {
	return Evaluate(r.Fields(), registroNegativoRules)
}

func (r *CancelacionNegativoRequest) Validate() []string {
	return Evaluate(r.Fields(), cancelacionNegativoRules)
}

func (r *ModificacionPositivoRequest) Validate() []string {
	return Evaluate(r.Fields(), modificacionPositivoRules)
}

func (r *CancelacionPositivoRequest) Validate() []string {
	return Evaluate(r.Fields(), cancelacionPositivoRules)
}

func (r *ConsultaNegativaRequest) Validate() []string {
	return Evaluate(r.Fields(), consultaNegativaRules)
}

func (r *ConsultaPositivaRequest) Validate() []string {
	return Evaluate(r.Fields(), consultaPositivaRules)
}
