package models

import "strings"

// Request variants for the SRTM action service. Field names follow the wire
// contract of the REST surface (Spanish snake_case), one flat string set per
// variant. Conditional requirements live in the rule tables in rules.go so
// each variant stays independently testable.

// RegistroPositivoRequest registers a device on the positive list (1001).
type RegistroPositivoRequest struct {
	IMEI                          string `json:"imei"`
	TipoUsuarioPropietario        string `json:"tipo_usuario_propietario"`
	TipoIdentificacionPropietario string `json:"tipo_identificacion_propietario"`
	IdentificacionPropietario     string `json:"identificacion_propietario"`
	NombreRazonSocialPropietario  string `json:"nombre_razon_social_propietario"`
	DireccionPropietario          string `json:"direccion_propietario"`
	TelefonoContactoPropietario   string `json:"telefono_contacto_propietario"`
	Observaciones                 string `json:"observaciones"`
	IMSI                          string `json:"imsi,omitempty"`
	MSISDN                        string `json:"msisdn,omitempty"`
}

func (r *RegistroPositivoRequest) Normalize() { trimAll(r.fields()) }

func (r *RegistroPositivoRequest) Fields() FieldSet {
	return copyFields(r.fields())
}

func (r *RegistroPositivoRequest) fields() map[string]*string {
	return map[string]*string{
		"imei":                            &r.IMEI,
		"tipo_usuario_propietario":        &r.TipoUsuarioPropietario,
		"tipo_identificacion_propietario": &r.TipoIdentificacionPropietario,
		"identificacion_propietario":      &r.IdentificacionPropietario,
		"nombre_razon_social_propietario": &r.NombreRazonSocialPropietario,
		"direccion_propietario":           &r.DireccionPropietario,
		"telefono_contacto_propietario":   &r.TelefonoContactoPropietario,
		"observaciones":                   &r.Observaciones,
		"imsi":                            &r.IMSI,
		"msisdn":                          &r.MSISDN,
	}
}

// RegistroNegativoRequest reports a device stolen or lost (2001).
type RegistroNegativoRequest struct {
	IMEI                      string `json:"imei"`
	TipoReporte               string `json:"tipo_reporte"`
	NombreReporte             string `json:"nombre_reporte"`
	TipoIdentificacionReporte string `json:"tipo_identificacion_reporte"`
	IdentificacionReporte     string `json:"identificacion_reporte"`
	TelefonoReporte           string `json:"telefono_reporte"`
	DireccionReporte          string `json:"direccion_reporte"`
	CiudadReporte             string `json:"ciudad_reporte"`
	DepartamentoReporte       string `json:"departamento_reporte"`
	CorreoElectronico         string `json:"correo_electronico"`
	Observaciones             string `json:"observaciones"`
	EmpleoViolencia           string `json:"empleo_violencia,omitempty"`
	UtilizacionArmas          string `json:"utilizacion_armas,omitempty"`
	VictimaMenorEdad          string `json:"victima_menor_edad,omitempty"`
}

func (r *RegistroNegativoRequest) Normalize() { trimAll(r.fields()) }

func (r *RegistroNegativoRequest) Fields() FieldSet {
	return copyFields(r.fields())
}

func (r *RegistroNegativoRequest) fields() map[string]*string {
	return map[string]*string{
		"imei":                        &r.IMEI,
		"tipo_reporte":                &r.TipoReporte,
		"nombre_reporte":              &r.NombreReporte,
		"tipo_identificacion_reporte": &r.TipoIdentificacionReporte,
		"identificacion_reporte":      &r.IdentificacionReporte,
		"telefono_reporte":            &r.TelefonoReporte,
		"direccion_reporte":           &r.DireccionReporte,
		"ciudad_reporte":              &r.CiudadReporte,
		"departamento_reporte":        &r.DepartamentoReporte,
		"correo_electronico":          &r.CorreoElectronico,
		"observaciones":               &r.Observaciones,
		"empleo_violencia":            &r.EmpleoViolencia,
		"utilizacion_armas":           &r.UtilizacionArmas,
		"victima_menor_edad":          &r.VictimaMenorEdad,
	}
}

// CancelacionNegativoRequest lifts a previous negative report (3001).
type CancelacionNegativoRequest struct {
	IMEI          string `json:"imei"`
	FechaReporte  string `json:"fecha_reporte"`
	Observaciones string `json:"observaciones"`
}

func (r *CancelacionNegativoRequest) Normalize() { trimAll(r.fields()) }

func (r *CancelacionNegativoRequest) Fields() FieldSet {
	return copyFields(r.fields())
}

func (r *CancelacionNegativoRequest) fields() map[string]*string {
	return map[string]*string{
		"imei":          &r.IMEI,
		"fecha_reporte": &r.FechaReporte,
		"observaciones": &r.Observaciones,
	}
}

// ModificacionPositivoRequest updates an existing positive record (4001).
type ModificacionPositivoRequest struct {
	IMEI                                  string `json:"imei"`
	TipoModificacion                      string `json:"tipo_modificacion"`
	TipoUsuarioPropietario                string `json:"tipo_usuario_propietario"`
	TipoIdentificacionPropietario         string `json:"tipo_identificacion_propietario"`
	IdentificacionPropietario             string `json:"identificacion_propietario"`
	NombreRazonSocialPropietario          string `json:"nombre_razon_social_propietario"`
	DireccionPropietario                  string `json:"direccion_propietario"`
	TelefonoContactoPropietario           string `json:"telefono_contacto_propietario"`
	TipoUsuarioAutorizado                 string `json:"tipo_usuario_autorizado"`
	IMSI                                  string `json:"imsi,omitempty"`
	MSISDN                                string `json:"msisdn,omitempty"`
	Observaciones                         string `json:"observaciones,omitempty"`
	TipoIdentificacionPropietarioAnterior string `json:"tipo_identificacion_propietario_anterior,omitempty"`
	IdentificacionPropietarioAnterior     string `json:"identificacion_propietario_anterior,omitempty"`
	TipoIdentificacionAutorizado          string `json:"tipo_identificacion_autorizado,omitempty"`
	IdentificacionAutorizado              string `json:"identificacion_autorizado,omitempty"`
	NombreRazonSocialAutorizado           string `json:"nombre_razon_social_autorizado,omitempty"`
	DireccionAutorizado                   string `json:"direccion_autorizado,omitempty"`
	TelefonoContactoAutorizado            string `json:"telefono_contacto_autorizado,omitempty"`
}

func (r *ModificacionPositivoRequest) Normalize() { trimAll(r.fields()) }

func (r *ModificacionPositivoRequest) Fields() FieldSet {
	return copyFields(r.fields())
}

func (r *ModificacionPositivoRequest) fields() map[string]*string {
	return map[string]*string{
		"imei":                                     &r.IMEI,
		"tipo_modificacion":                        &r.TipoModificacion,
		"tipo_usuario_propietario":                 &r.TipoUsuarioPropietario,
		"tipo_identificacion_propietario":          &r.TipoIdentificacionPropietario,
		"identificacion_propietario":               &r.IdentificacionPropietario,
		"nombre_razon_social_propietario":          &r.NombreRazonSocialPropietario,
		"direccion_propietario":                    &r.DireccionPropietario,
		"telefono_contacto_propietario":            &r.TelefonoContactoPropietario,
		"tipo_usuario_autorizado":                  &r.TipoUsuarioAutorizado,
		"imsi":                                     &r.IMSI,
		"msisdn":                                   &r.MSISDN,
		"observaciones":                            &r.Observaciones,
		"tipo_identificacion_propietario_anterior": &r.TipoIdentificacionPropietarioAnterior,
		"identificacion_propietario_anterior":      &r.IdentificacionPropietarioAnterior,
		"tipo_identificacion_autorizado":           &r.TipoIdentificacionAutorizado,
		"identificacion_autorizado":                &r.IdentificacionAutorizado,
		"nombre_razon_social_autorizado":           &r.NombreRazonSocialAutorizado,
		"direccion_autorizado":                     &r.DireccionAutorizado,
		"telefono_contacto_autorizado":             &r.TelefonoContactoAutorizado,
	}
}

// CancelacionPositivoRequest removes a device from the positive list (5001).
type CancelacionPositivoRequest struct {
	IMEI                          string `json:"imei"`
	TipoUsuarioPropietario        string `json:"tipo_usuario_propietario"`
	TipoIdentificacionPropietario string `json:"tipo_identificacion_propietario"`
	IdentificacionPropietario     string `json:"identificacion_propietario"`
	Observaciones                 string `json:"observaciones"`
}

func (r *CancelacionPositivoRequest) Normalize() { trimAll(r.fields()) }

func (r *CancelacionPositivoRequest) Fields() FieldSet {
	return copyFields(r.fields())
}

func (r *CancelacionPositivoRequest) fields() map[string]*string {
	return map[string]*string{
		"imei":                            &r.IMEI,
		"tipo_usuario_propietario":        &r.TipoUsuarioPropietario,
		"tipo_identificacion_propietario": &r.TipoIdentificacionPropietario,
		"identificacion_propietario":      &r.IdentificacionPropietario,
		"observaciones":                   &r.Observaciones,
	}
}

// ConsultaNegativaRequest looks a device up on the negative list.
type ConsultaNegativaRequest struct {
	IMEI string `json:"imei"`
}

func (r *ConsultaNegativaRequest) Normalize() { trimAll(r.fields()) }

func (r *ConsultaNegativaRequest) Fields() FieldSet {
	return copyFields(r.fields())
}

func (r *ConsultaNegativaRequest) fields() map[string]*string {
	return map[string]*string{"imei": &r.IMEI}
}

// ConsultaPositivaRequest looks a device/owner pair up on the positive list.
type ConsultaPositivaRequest struct {
	IMEI                          string `json:"imei"`
	TipoIdentificacionPropietario string `json:"tipo_identificacion_propietario"`
	IdentificacionPropietario     string `json:"identificacion_propietario"`
}

func (r *ConsultaPositivaRequest) Normalize() { trimAll(r.fields()) }

func (r *ConsultaPositivaRequest) Fields() FieldSet {
	return copyFields(r.fields())
}

func (r *ConsultaPositivaRequest) fields() map[string]*string {
	return map[string]*string{
		"imei":                            &r.IMEI,
		"tipo_identificacion_propietario": &r.TipoIdentificacionPropietario,
		"identificacion_propietario":      &r.IdentificacionPropietario,
	}
}

// FieldSet is a flat field-name → value view of one request variant, consumed
// by the rule evaluator.
type FieldSet map[string]string

func trimAll(fields map[string]*string) {
	for _, v := range fields {
		*v = strings.TrimSpace(*v)
	}
}

func copyFields(fields map[string]*string) FieldSet {
	out := make(FieldSet, len(fields))
	for k, v := range fields {
		out[k] = *v
	}
	return out
}
