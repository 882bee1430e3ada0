// Package delivery 解锁通知网关（邮件 + 短信），全部尽力而为：
// 任何发送失败只记日志，绝不影响解锁结果。
package delivery

import (
	"log"
	"strings"
)

type EmailSender interface {
	SendContactDetails(to, adNumber, ownerName, ownerPhone, ownerEmail, companyName string) error
}

type SMSSender interface {
	Send(toPhone, text string) error
}

type Gateway struct {
	email EmailSender
	sms   SMSSender
}

func NewGateway(email EmailSender, sms SMSSender) *Gateway {
	return &Gateway{email: email, sms: sms}
}

// ContactRevealNotice 通知内容
type ContactRevealNotice struct {
	CustomerEmail string
	CustomerPhone string
	AdNumber      string
	OwnerName     string
	OwnerPhone    string
	OwnerEmail    string
	CompanyName   string
}

// NotifyContactReveal 把解锁到的联系方式发给用户
func (g *Gateway) NotifyContactReveal(n ContactRevealNotice) {
	if g.email != nil && strings.Contains(n.CustomerEmail, "@") {
		if err := g.email.SendContactDetails(n.CustomerEmail, n.AdNumber, n.OwnerName, n.OwnerPhone, n.OwnerEmail, n.CompanyName); err != nil {
			log.Printf("delivery: contact email to %s failed: %v", n.CustomerEmail, err)
		}
	}

	if g.sms != nil && n.CustomerPhone != "" {
		text := strings.TrimSpace("Ad #" + n.AdNumber + " contact: " + n.OwnerName + " " + n.OwnerPhone + " " + n.OwnerEmail)
		if err := g.sms.Send(n.CustomerPhone, text); err != nil {
			log.Printf("delivery: contact sms to %s failed: %v", n.CustomerPhone, err)
		}
	}
}
