package mailer

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

func (m Mailer) deliver(ctx context.Context, from string, to []string, raw []byte) error {
	addr := net.JoinHostPort(m.cfg.Server, strconv.Itoa(m.cfg.Port))
	deadline := time.Now().Add(m.cfg.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	tlsConfig := &tls.Config{ServerName: m.cfg.Server}

	dialer := &net.Dialer{Deadline: deadline}
	var conn net.Conn
	var err error
	if m.cfg.UseSSL {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	err = conn.SetDeadline(deadline)
	if err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, m.cfg.Server)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if !m.cfg.UseSSL {
		if ok, _ := client.Extension("STARTTLS"); ok {
			err = client.StartTLS(tlsConfig)
			if err != nil {
				return err
			}
		}
	}
	// some relays do not support AUTH at all, they get the mail
	// unauthenticated
	if m.cfg.Username != "" && m.cfg.Password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			err = client.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Server))
			if err != nil {
				return err
			}
		} else {
			m.logger.WarnContext(ctx, "smtp server doesn't support AUTH, sending without credentials")
		}
	}

	err = client.Mail(from)
	if err != nil {
		return err
	}
	for _, rcpt := range to {
		err = client.Rcpt(rcpt)
		if err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	if err != nil {
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}
	return client.Quit()
}
