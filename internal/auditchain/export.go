package auditchain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var csvHeader = []string{
	"id", "timestamp", "userId", "userName", "actorRole", "origin",
	"action", "resource", "resourceId", "ipAddress", "userAgent",
	"prevHash", "hash", "details",
}

// ExportJSON renders the chain as a JSON array in append order.
func ExportJSON(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	out, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("export audit chain: %w", err)
	}
	return out, nil
}

// ExportCSV renders the chain as CSV. Every field is quoted and embedded
// quotes are doubled, so details payloads with commas survive a round trip
// through spreadsheet tooling.
func ExportCSV(entries []Entry) ([]byte, error) {
	var b strings.Builder
	writeRow(&b, csvHeader)

	for _, entry := range entries {
		details, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("export audit entry %s: %w", entry.ID, err)
		}
		writeRow(&b, []string{
			entry.ID,
			entry.Timestamp.UTC().Format(time.RFC3339),
			entry.UserID,
			entry.UserName,
			entry.ActorRole,
			string(entry.Origin),
			entry.Action,
			entry.Resource,
			entry.ResourceID,
			entry.IPAddress,
			entry.UserAgent,
			entry.PrevHash,
			entry.Hash,
			string(details),
		})
	}
	return []byte(b.String()), nil
}

func writeRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
