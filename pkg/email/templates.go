package email

import "html/template"

var quotationTemplate = template.Must(template.New("quotation").Parse(`
<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <title>{{.Number}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 640px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; border-collapse: collapse;">
        <tr>
            <td style="background-color: #1a1a2e; padding: 32px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.CoworkName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 32px;">
                <p style="color: #4a5568; font-size: 16px;">Hola {{.ClientName}},</p>
                <p style="color: #4a5568; font-size: 16px;">Te enviamos la cotización <strong>{{.Number}}</strong>: {{.Title}}.</p>
                <table role="presentation" style="width: 100%; border-collapse: collapse; font-size: 14px;">
                    <tr style="border-bottom: 1px solid #e2e8f0; text-align: left;">
                        <th style="padding: 8px 0;">Descripción</th>
                        <th style="padding: 8px 0; text-align: right;">Cant.</th>
                        <th style="padding: 8px 0; text-align: right;">Precio</th>
                        <th style="padding: 8px 0; text-align: right;">Total</th>
                    </tr>
                    {{range .Lines}}
                    <tr style="border-bottom: 1px solid #f1f5f9;">
                        <td style="padding: 8px 0;">{{.Description}}</td>
                        <td style="padding: 8px 0; text-align: right;">{{.Quantity}}</td>
                        <td style="padding: 8px 0; text-align: right;">{{.UnitPrice}}</td>
                        <td style="padding: 8px 0; text-align: right;">{{.Total}}</td>
                    </tr>
                    {{end}}
                </table>
                <table role="presentation" style="width: 100%; margin-top: 16px; font-size: 14px;">
                    <tr><td>Subtotal</td><td style="text-align: right;">{{.Currency}} {{.Subtotal}}</td></tr>
                    <tr><td>Descuento</td><td style="text-align: right;">{{.Currency}} {{.DiscountAmount}}</td></tr>
                    <tr><td>{{.TaxLabel}}</td><td style="text-align: right;">{{.Currency}} {{.Taxes}}</td></tr>
                    <tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>{{.Currency}} {{.Total}}</strong></td></tr>
                </table>
                <p style="color: #718096; font-size: 14px; margin-top: 24px;">Válida hasta el {{.ValidUntil}}.</p>
                {{if .Notes}}<p style="color: #718096; font-size: 14px;">{{.Notes}}</p>{{end}}
            </td>
        </tr>
        {{if .Footer}}
        <tr>
            <td style="background-color: #f8fafc; padding: 24px; text-align: center; color: #a0aec0; font-size: 12px;">{{.Footer}}</td>
        </tr>
        {{end}}
    </table>
</body>
</html>
`))

var memberInviteTemplate = template.Must(template.New("member_invite").Parse(`
<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <title>{{.CoworkName}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="padding: 32px;">
                <h2 style="color: #1a1a2e; margin: 0 0 16px 0;">{{.CoworkName}}</h2>
                <p style="color: #4a5568; font-size: 16px;">{{.InviterName}} te agregó al equipo con el rol <strong>{{.Role}}</strong>.</p>
                <p style="color: #718096; font-size: 14px;">Inicia sesión para ver el pipeline y las cotizaciones del cowork.</p>
            </td>
        </tr>
    </table>
</body>
</html>
`))

var passwordResetTemplate = template.Must(template.New("password_reset").Parse(`
<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <title>Restablecer contraseña</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="padding: 32px;">
                <p style="color: #4a5568; font-size: 16px;">Hola {{.Name}},</p>
                <p style="color: #4a5568; font-size: 16px;">Recibimos una solicitud para restablecer tu contraseña.</p>
                <p style="text-align: center; margin: 32px 0;">
                    <a href="{{.ResetURL}}" style="background-color: #1a1a2e; color: #ffffff; padding: 14px 28px; border-radius: 8px; text-decoration: none;">Restablecer contraseña</a>
                </p>
                <p style="color: #718096; font-size: 14px;">El enlace vence en {{.ExpiresIn}}. Si no lo solicitaste, ignora este correo.</p>
            </td>
        </tr>
    </table>
</body>
</html>
`))
