package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/google/uuid"

	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
)

const signature = "Best regards,\nSwahiliPot Hub Team"

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "welcome"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #0B4F6C;">Welcome to SwahiliPot Hub!</h2>
<p>Hello <strong>{{.FullName}}</strong>,</p>
<p>Welcome to SwahiliPot Hub Room Booking System! You can now book rooms for your meetings and events.</p>
<p>Get started by logging in and exploring our available rooms.</p>
<p>Best regards,<br><strong>SwahiliPot Hub Team</strong></p>
</div>{{end}}
{{define "rows"}}<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
{{range .}}<tr><td style="padding: 8px; border-bottom: 1px solid #ddd;"><strong>{{.Label}}:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Value}}</td></tr>
{{end}}</table>{{end}}
{{define "admin_request"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #0B4F6C;">New Room Booking Request</h2>
{{template "rows" .Rows}}
</div>{{end}}
{{define "user_request"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #0B4F6C;">Booking Confirmation</h2>
<p>Hello <strong>{{.FullName}}</strong>,</p>
<p>Your booking request has been received!</p>
{{template "rows" .Rows}}
<p>You will receive a confirmation once approved.</p>
<p>Best regards,<br><strong>SwahiliPot Hub Team</strong></p>
</div>{{end}}
{{define "status_changed"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #0B4F6C;">Booking {{.Status}}</h2>
<p>Hello <strong>{{.FullName}}</strong>,</p>
<p>Your booking has been {{.Status}}.</p>
{{template "rows" .Rows}}
<p>Best regards,<br><strong>SwahiliPot Hub Team</strong></p>
</div>{{end}}
`))

type mailRow struct {
	Label string
	Value string
}

type mailData struct {
	FullName string
	Status   string
	Rows     []mailRow
}

func render(name string, data mailData) string {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return ""
	}
	return buf.String()
}

func newMessage(kind, to, subject, text, html string) ports.Message {
	return ports.Message{
		ID:      uuid.NewString(),
		Kind:    kind,
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}
}

func welcomeMessage(u *domain.User) ports.Message {
	text := fmt.Sprintf("Hello %s,\n\nWelcome to SwahiliPot Hub Room Booking System! You can now book rooms for your meetings and events.\n\n%s",
		u.FullName, signature)
	return newMessage("welcome", u.Email, "Welcome to SwahiliPot Hub!", text,
		render("welcome", mailData{FullName: u.FullName}))
}

func adminRequestMessage(adminEmail string, room *domain.Room, u *domain.User, b *domain.Booking) ports.Message {
	text := fmt.Sprintf("New booking request:\n\nRoom: %s\nUser: %s (%s)\nDate: %s\nTime: %s",
		room.Name, u.FullName, u.Email, b.Date, b.Range())
	rows := []mailRow{
		{"Room", room.Name},
		{"User", u.FullName},
		{"Email", u.Email},
		{"Date", b.Date.String()},
		{"Time", b.Range().String()},
	}
	return newMessage("booking_admin", adminEmail, "New Room Booking Request", text,
		render("admin_request", mailData{Rows: rows}))
}

func userRequestMessage(room *domain.Room, u *domain.User, b *domain.Booking) ports.Message {
	text := fmt.Sprintf("Hello %s,\n\nYour booking request has been received!\n\nRoom: %s\nDate: %s\nTime: %s\n\nYou will receive a confirmation once approved.\n\n%s",
		u.FullName, room.Name, b.Date, b.Range(), signature)
	return newMessage("booking_user", u.Email, "Room Booking Confirmation", text,
		render("user_request", mailData{FullName: u.FullName, Rows: bookingRows(room, b)}))
}

func statusChangedMessage(room *domain.Room, u *domain.User, b *domain.Booking) ports.Message {
	text := fmt.Sprintf("Hello %s,\n\nYour booking has been %s.\n\nRoom: %s\nDate: %s\nTime: %s\n\n%s",
		u.FullName, b.Status, room.Name, b.Date, b.Range(), signature)
	return newMessage("booking_"+string(b.Status), u.Email, "Room Booking "+titleStatus(b.Status), text,
		render("status_changed", mailData{FullName: u.FullName, Status: string(b.Status), Rows: bookingRows(room, b)}))
}

func bookingRows(room *domain.Room, b *domain.Booking) []mailRow {
	return []mailRow{
		{"Room", room.Name},
		{"Date", b.Date.String()},
		{"Time", b.Range().String()},
	}
}

func titleStatus(s domain.BookingStatus) string {
	switch s {
	case domain.BookingConfirmed:
		return "Confirmed"
	case domain.BookingCancelled:
		return "Cancelled"
	default:
		return "Pending"
	}
}
