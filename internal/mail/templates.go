package mail

import (
	"strings"
	"text/template"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "otp"}}Hi {{.Name}},

Your EVN verification code is {{.Code}}.
It expires in {{.ValidMinutes}} minutes. If you did not ask for it, ignore this email.
{{end}}

{{define "order_placed"}}Hi {{.Name}},

Thanks for shopping with EVN. We received order {{.OrderNumber}}.
{{range .Items}}
  {{.Quantity}} x {{.Name}} ({{.Size}}{{if .Color}}, {{.Color}}{{end}})  {{.Price}}
{{- end}}

Total: {{.Total}} ({{.Payment}})
{{end}}

{{define "status_changed"}}Hi {{.Name}},

Your order {{.OrderNumber}} is now {{.Status}}.
{{- if .Note}}
Note: {{.Note}}
{{- end}}
{{- if .TrackingNumber}}
Tracking: {{.Carrier}} {{.TrackingNumber}}
{{- end}}
{{end}}
`))

type OTPData struct {
	Name         string
	Code         string
	ValidMinutes int
}

type OrderLine struct {
	Name     string
	Size     string
	Color    string
	Quantity int
	Price    string
}

type OrderPlacedData struct {
	Name        string
	OrderNumber string
	Items       []OrderLine
	Total       string
	Payment     string
}

type StatusChangedData struct {
	Name           string
	OrderNumber    string
	Status         string
	Note           string
	Carrier        string
	TrackingNumber string
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return strings.TrimLeft(b.String(), "\n"), nil
}

func OTP(to string, d OTPData) (Message, error) {
	body, err := render("otp", d)
	return Message{To: to, Subject: "Your EVN verification code", Body: body}, err
}

func OrderPlaced(to string, d OrderPlacedData) (Message, error) {
	body, err := render("order_placed", d)
	return Message{To: to, Subject: "Order " + d.OrderNumber + " confirmed", Body: body}, err
}

func StatusChanged(to string, d StatusChangedData) (Message, error) {
	body, err := render("status_changed", d)
	return Message{To: to, Subject: "Order " + d.OrderNumber + " is " + d.Status, Body: body}, err
}
