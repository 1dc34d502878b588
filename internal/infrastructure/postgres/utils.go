package postgres

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// IsConnectivity clasifica un error como falla de conectividad con la BD
// (servidor caído, red perdida, timeout de conexión). Solo estos errores
// habilitan la ruta degradada offline; un error de negocio o de SQL nunca.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	// pgx envuelve fallas de conexión con este prefijo; no hay sentinel exportado.
	msg := err.Error()
	if strings.Contains(msg, "failed to connect") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "closed pool") ||
		strings.Contains(msg, "conn closed") {
		return true
	}

	// Códigos SQLSTATE clase 08 (connection exception) y 57P01 (admin shutdown).
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "57P01" {
			return true
		}
	}
	return false
}
