package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qs3c/estate_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendOtpCode 发送一次性验证码（登录/找回密码/换绑）
func (s *Service) SendOtpCode(to, code, purpose string) error {
	subject := "Your verification code"
	if purpose == "forgot" {
		subject = "Password reset code"
	}
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #16a34a;">Verification code</h2>
        <p>Use the code below to continue:</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">
            %s
        </div>
        <p>The code expires in 10 minutes.</p>
        <p>If you did not request this, please ignore this email.</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`, code)

	return s.sendHTML(to, subject, body)
}

// SendContactDetails 解锁成功后把业主联系方式发给用户（尽力而为）
func (s *Service) SendContactDetails(to, adNumber, ownerName, ownerPhone, ownerEmail, companyName string) error {
	subject := fmt.Sprintf("Contact details for Ad #%s", adNumber)
	body := fmt.Sprintf(
		"Ad number: %s\n"+
			"Owner name: %s\n"+
			"Owner phone: %s\n"+
			"Owner email: %s\n"+
			"Owner company: %s\n",
		adNumber,
		orNA(ownerName),
		orNA(ownerPhone),
		orNA(ownerEmail),
		orNA(companyName),
	)

	return s.sendPlain(to, subject, body)
}

func orNA(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "N/A"
	}
	return s
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	return s.send(to, subject, body, "text/html; charset=UTF-8")
}

// sendPlain 发送纯文本邮件
func (s *Service) sendPlain(to, subject, body string) error {
	return s.send(to, subject, body, "text/plain; charset=UTF-8")
}

func (s *Service) send(to, subject, body, contentType string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = contentType

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
