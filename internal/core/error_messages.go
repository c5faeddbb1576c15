// error_messages.go maps whole-request failures to user messages.
//
// # Error Codes Reference
//
// This file defines user-facing error messages with codes for support
// reference. Messages are in Spanish, the language of the admin panel.
// Row-level problems are never errors; they become RowIssues. The codes
// below cover failures of a whole request.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key          Patterns: "duplicate key"
//	DB002 - Foreign key            Patterns: "foreign key constraint"
//	DB003 - Connection refused     Patterns: "connection refused"
//	DB004 - Connection reset       Patterns: "connection reset"
//	DB005 - Timeout                Patterns: "timeout"
//	DB006 - Deadlock               Patterns: "deadlock"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large       Patterns: "file too large"
//	FILE002 - Unsupported type     Patterns: "unsupported file type"
//	FILE003 - Encoding error       Patterns: "encoding error"
//	FILE004 - No file              Patterns: "no file provided"
//	FILE005 - Empty file           Patterns: "empty file"
//	FILE006 - Invalid workbook     Patterns: "invalid xlsx"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Rules unavailable     Patterns: "mapping rules unavailable"
//	IMP002 - Import busy           Patterns: "too many imports"
//	IMP003 - Counts do not add up  Patterns: "reconciliation failed"
//	IMP004 - Batch not found       Patterns: "batch not found"
//	IMP005 - Catalog unavailable   Patterns: "catalog unavailable"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled     Patterns: "context canceled"
//	REQ002 - Request timeout       Patterns: "context deadline exceeded"
//	RATE001 - Rate limited         Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Import pipeline (IMP)
	// =========================================================================
	{
		pattern: "mapping rules unavailable",
		msg: UserMessage{
			Message: "No se pudieron cargar las reglas de mapeo de categorías",
			Action:  "Intenta de nuevo en unos momentos",
			Code:    "IMP001",
		},
	},
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "Ya hay una importación en curso",
			Action:  "Espera a que termine e intenta de nuevo",
			Code:    "IMP002",
		},
	},
	{
		pattern: "reconciliation failed",
		msg: UserMessage{
			Message: "Los conteos de la importación no cuadran con el total de filas",
			Action:  "Reporta el identificador del lote a soporte",
			Code:    "IMP003",
		},
	},
	{
		pattern: "batch not found",
		msg: UserMessage{
			Message: "No se encontró el lote de importación",
			Action:  "Verifica el identificador del lote",
			Code:    "IMP004",
		},
	},
	{
		pattern: "catalog unavailable",
		msg: UserMessage{
			Message: "No se pudo consultar el catálogo",
			Action:  "Intenta de nuevo en unos momentos",
			Code:    "IMP005",
		},
	},

	// =========================================================================
	// File handling (FILE)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "El archivo excede el tamaño máximo permitido",
			Action:  "Divide el archivo en partes más pequeñas",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Tipo de archivo no permitido",
			Action:  "Sube un archivo .csv o .xlsx",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "El archivo contiene caracteres inválidos",
			Action:  "Guarda el archivo con codificación UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No se seleccionó ningún archivo",
			Action:  "Selecciona un archivo para importar",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "El archivo está vacío",
			Action:  "Sube un archivo con encabezado y al menos una fila",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "No se pudo leer el libro de Excel",
			Action:  "Verifica que el archivo no esté dañado o expórtalo como CSV",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Database (DB)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "Ya existe un registro con esa clave",
			Action:  "Revisa las claves duplicadas en tu archivo",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "El registro referenciado no existe",
			Action:  "Crea primero la categoría correspondiente",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "No se pudo conectar a la base de datos",
			Action:  "Intenta de nuevo en unos momentos",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Se interrumpió la conexión a la base de datos",
			Action:  "Intenta de nuevo",
			Code:    "DB004",
		},
	},

	// =========================================================================
	// Request lifecycle (REQ) before the generic timeout pattern
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "La solicitud fue cancelada",
			Action:  "Intenta de nuevo",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "La solicitud tardó demasiado",
			Action:  "Intenta con un archivo más pequeño",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "La operación excedió el tiempo límite",
			Action:  "Intenta de nuevo más tarde",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "La base de datos estaba ocupada con operaciones en conflicto",
			Action:  "Intenta de nuevo",
			Code:    "DB006",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Demasiadas solicitudes",
			Action:  "Espera un momento antes de intentar de nuevo",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocurrió un error inesperado",
	Action:  "Intenta de nuevo o contacta a soporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Código: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
