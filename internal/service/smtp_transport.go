package service

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/readrover/internal/config"
)

const smtpTimeout = 20 * time.Second

// outgoingMail 已编码的待投递邮件
type outgoingMail struct {
	From string
	To   []string
	Data []byte
}

type mailTransport func(mail outgoingMail) error

// smtpTransport use_ssl 走 465 隐式 TLS；use_tls 在明文连接上 STARTTLS
func smtpTransport(cfg *config.EmailConfig) mailTransport {
	return func(mail outgoingMail) error {
		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		tlsConfig := &tls.Config{ServerName: cfg.Host}
		dialer := &net.Dialer{Timeout: smtpTimeout}

		var (
			conn net.Conn
			err  error
		)
		if cfg.UseSSL {
			conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
		} else {
			conn, err = dialer.Dial("tcp", addr)
		}
		if err != nil {
			return err
		}
		_ = conn.SetDeadline(time.Now().Add(smtpTimeout))

		client, err := smtp.NewClient(conn, cfg.Host)
		if err != nil {
			conn.Close()
			return err
		}
		defer client.Close()

		if cfg.UseTLS && !cfg.UseSSL {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
		if cfg.Username != "" {
			if ok, _ := client.Extension("AUTH"); ok {
				if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
					return fmt.Errorf("smtp auth: %w", err)
				}
			}
		}
		if err := client.Mail(mail.From); err != nil {
			return err
		}
		for _, rcpt := range mail.To {
			if err := client.Rcpt(rcpt); err != nil {
				return classifyRcptError(err)
			}
		}
		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(mail.Data); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return client.Quit()
	}
}

// classifyRcptError RCPT 阶段的 5xx 永久错误视为收件人无效，不再重试
func classifyRcptError(err error) error {
	var reply *textproto.Error
	if errors.As(err, &reply) && reply.Code >= 500 && reply.Code < 600 {
		return fmt.Errorf("%w: %d %s", ErrEmailRecipientRejected, reply.Code, reply.Msg)
	}
	return err
}
