package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FileName is the suggested name for an exported plan.
func FileName(p PlanFile) string {
	return fmt.Sprintf("spend-plan-%d.json", p.Plan.Year)
}

// Export returns a copy of p ready to be written out, with Meta.ExportedAt set to at.
// An empty AppVersion is filled with appVersion; everything else passes through.
func Export(p PlanFile, at time.Time, appVersion string) PlanFile {
	meta := ExportMeta{}
	if p.Meta != nil {
		meta = *p.Meta
	}
	meta.ExportedAt = Timestamp(at)
	if meta.AppVersion == "" {
		meta.AppVersion = appVersion
	}
	p.Meta = &meta
	return p
}

// MarshalExport encodes p as the indented JSON document written to disk.
func MarshalExport(p PlanFile) ([]byte, error) {
	if p.Categories == nil {
		p.Categories = []Category{}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return append(data, '\n'), nil
}

// Import validates an uploaded file. Only names ending in .json are accepted.
func Import(fileName string, data []byte) Result {
	if !strings.HasSuffix(fileName, ".json") {
		return reject(KindWrongExtension, MsgWrongExtension)
	}
	return ValidateJSON(data)
}
