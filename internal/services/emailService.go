package services

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailService dispatches transactional mail. Template and link assembly
// live here; the SMTP transport itself is an external collaborator.
type EmailService interface {
	SendOTPEmail(to, code string) error
	SendResetEmail(to, resetLink string) error
}

type emailService struct {
	from string
}

func NewEmailService() EmailService {
	return &emailService{
		from: os.Getenv("SMTP_USERNAME"),
	}
}

const otpEmailSubject = "Your One-Time Password (OTP) for Registration"

func otpEmailBody(code string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px;">
		  <h2 style="text-align: center; color: #333;">Welcome!</h2>
		  <p>Thank you for registering. Please use the following One-Time Password (OTP) to complete your registration:</p>
		  <p style="text-align: center; font-size: 24px; font-weight: bold; color: #007BFF;">%s</p>
		  <p>This OTP is valid for 5 minutes. If you did not request this, please ignore this email.</p>
		  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;"/>
		  <p style="font-size: 0.9em; text-align: center; color: #666;">This is an automated message. Please do not reply.</p>
		</div>`, code)
}

const resetEmailSubject = "Password Reset Request"

func resetEmailBody(resetLink string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px;">
		  <h2 style="text-align: center; color: #333;">Password Reset Request</h2>
		  <p>You recently requested to reset your password. Please click the button below to proceed.</p>
		  <a href="%s" style="display: block; width: 200px; margin: 20px auto; padding: 10px 20px; background-color: #007BFF; color: white; text-align: center; text-decoration: none; border-radius: 5px;">Reset Password</a>
		  <p>If you did not request a password reset, please ignore this email.</p>
		  <p>This link is valid for 1 hour.</p>
		  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;"/>
		  <p style="font-size: 0.9em; text-align: center; color: #666;">This is an automated message. Please do not reply.</p>
		</div>`, resetLink)
}

func (e *emailService) SendOTPEmail(to, code string) error {
	return e.send(to, otpEmailSubject, otpEmailBody(code))
}

func (e *emailService) SendResetEmail(to, resetLink string) error {
	return e.send(to, resetEmailSubject, resetEmailBody(resetLink))
}

func (e *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()

	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
		port = p
	}

	d := gomail.NewDialer(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))

	if err := d.DialAndSend(m); err != nil {
		return err
	}
	return nil
}
