package email

import (
	"bytes"
	"html/template"
)

type confirmationData struct {
	Confirmation
	FrontendURL string
	Year        int
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: 'Arial', sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #150354; color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0; }
    .content { background: #F2F4F7; padding: 30px; border-radius: 0 0 10px 10px; }
    .curso-info { background: #A8DADC; padding: 15px; border-radius: 8px; margin: 20px 0; }
    .footer { text-align: center; margin-top: 30px; font-size: 12px; color: #666; }
    .button { background: #150354; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Français Intelligent</h1>
    </div>
    <div class="content">
      <h2>¡Hola {{.Nombre}}!</h2>
      <p>Tu inscripción ha sido confirmada exitosamente.</p>

      <div class="curso-info">
        <h3 style="margin-top: 0;">Detalles del curso:</h3>
        <p><strong>Curso:</strong> {{.Curso}}</p>
        <p><strong>Horario:</strong> {{.Dias}} • {{.Horario}}</p>
        <p><strong>Folio:</strong> {{.Folio}}</p>
        <p><strong>Monto pagado:</strong> ${{.Precio}} MXN</p>
      </div>

      <h3>Próximos pasos:</h3>
      <ol>
        <li>Recibirás un correo con el acceso a la plataforma 24 horas antes del inicio.</li>
        <li>Prepara tu material: cuaderno, diccionario y muchas ganas de aprender.</li>
        <li>Únete a nuestro grupo de WhatsApp (el enlace está en tu perfil).</li>
      </ol>

      <p style="text-align: center; margin-top: 30px;">
        <a href="{{.FrontendURL}}/mis-cursos" class="button">Ver mis cursos</a>
      </p>

      <p>¿Tienes dudas? Responde a este correo o contáctanos por el chat de la plataforma.</p>

      <p>¡Nos vemos en clase!<br>
      <strong>Equipo Français Intelligent</strong></p>
    </div>
    <div class="footer">
      <p>© {{.Year}} Français Intelligent. Todos los derechos reservados.</p>
      <p>Este es un correo automático, por favor no respondas directamente.</p>
    </div>
  </div>
</body>
</html>
`))

func renderConfirmation(data confirmationData) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
