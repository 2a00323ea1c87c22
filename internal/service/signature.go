// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/AIR-hl/syncpilot/models"
)

// ConflictSignature computes the canonical, order-independent fingerprint of
// a conflict's content. The engine does not assign conflicts stable
// identities across polls, so (session, root, signature) is the identity used
// for idempotent resolution bookkeeping. Both change lists are sorted by path
// before serialization: the engine's instance ordering must never influence
// the result.
func ConflictSignature(c models.Conflict) string {
	h := sha256.New()
	h.Write([]byte(c.Root))
	h.Write([]byte{0})
	writeChanges(h, c.AlphaChanges)
	h.Write([]byte{0})
	writeChanges(h, c.BetaChanges)
	return hex.EncodeToString(h.Sum(nil))
}

func writeChanges(h interface{ Write(p []byte) (int, error) }, changes []models.Change) {
	rendered := make([]string, 0, len(changes))
	for _, ch := range changes {
		rendered = append(rendered, renderChange(ch))
	}
	sort.Strings(rendered)
	for _, r := range rendered {
		h.Write([]byte(r))
		h.Write([]byte{1})
	}
}

func renderChange(ch models.Change) string {
	var b strings.Builder
	b.WriteString(ch.Path)
	b.WriteByte('|')
	b.WriteString(renderEntry(ch.Old))
	b.WriteByte('|')
	b.WriteString(renderEntry(ch.New))
	return b.String()
}

func renderEntry(e *models.Entry) string {
	if e == nil {
		return "<absent>"
	}
	parts := []string{string(e.Kind), e.Digest, e.Target}
	if e.Executable {
		parts = append(parts, "x")
	}
	return strings.Join(parts, ":")
}

// ConflictFingerprint reduces a session's whole conflict set to one string:
// the sorted, joined per-conflict signatures. Byte-identical conflict sets
// across polls produce identical fingerprints regardless of ordering.
func ConflictFingerprint(conflicts []models.Conflict) string {
	if len(conflicts) == 0 {
		return ""
	}
	sigs := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		sigs = append(sigs, ConflictSignature(c))
	}
	sort.Strings(sigs)
	return strings.Join(sigs, ",")
}
