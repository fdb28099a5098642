package config

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NameValue is one (name, value) pair from a device command's predefined
// value list (spec §6.5, the "(name,value)×N" fields).
type NameValue struct {
	Name  string
	Value string
}

// DeviceCommand is one row of a device's command table.
type DeviceCommand struct {
	Name        string
	ID          int
	CallType    string
	RetType     string
	CodePlace   string
	FileName    string
	Mask        string
	AcceptsData bool
	DataType    string // e.g. "VARREF" — spec §4.8 IOCTL
	ExtraData   string
	PredefOnly  bool
	Values      []NameValue
	Default     string
}

// DeviceSection is a "[DEVICE_NAME[,ALIASES]]" block from an "<MCU>.io"
// file.
type DeviceSection struct {
	Name     string
	Aliases  []string
	Commands map[string]*DeviceCommand
}

// IOTable is the parsed form of an entire "<MCU>.io" file: one
// DeviceSection per declared device, plus an alias index so any alias
// resolves to its owning section.
type IOTable struct {
	Sections map[string]*DeviceSection
	aliasOf  map[string]string
}

// Lookup resolves a device name or alias to its section.
func (t *IOTable) Lookup(name string) (*DeviceSection, bool) {
	name = strings.ToUpper(name)
	if sec, ok := t.Sections[name]; ok {
		return sec, true
	}
	if canon, ok := t.aliasOf[name]; ok {
		sec, ok := t.Sections[canon]
		return sec, ok
	}
	return nil, false
}

// ParseIOTable parses an "<MCU>.io" sectioned CSV file.
func ParseIOTable(r io.Reader) (*IOTable, error) {
	table := &IOTable{Sections: map[string]*DeviceSection{}, aliasOf: map[string]string{}}
	scanner := bufio.NewScanner(r)
	var cur *DeviceSection
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if isCommentLine(line) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			if !strings.HasSuffix(trimmed, "]") {
				return nil, fmt.Errorf("line %d: unterminated section header %q", lineNo, trimmed)
			}
			header := trimmed[1 : len(trimmed)-1]
			parts := strings.Split(header, ",")
			name := strings.ToUpper(strings.TrimSpace(parts[0]))
			cur = &DeviceSection{Name: name, Commands: map[string]*DeviceCommand{}}
			table.Sections[name] = cur
			for _, alias := range parts[1:] {
				alias = strings.ToUpper(strings.TrimSpace(alias))
				if alias == "" {
					continue
				}
				cur.Aliases = append(cur.Aliases, alias)
				table.aliasOf[alias] = name
			}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("line %d: command row %q before any [DEVICE] section", lineNo, trimmed)
		}
		cmd, err := parseDeviceCommandRow(trimmed)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		cur.Commands[strings.ToUpper(cmd.Name)] = cmd
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func parseDeviceCommandRow(row string) (*DeviceCommand, error) {
	cr := csv.NewReader(strings.NewReader(row))
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if len(fields) < 11 {
		return nil, fmt.Errorf("expected at least 11 fields, got %d", len(fields))
	}
	id, _ := strconv.Atoi(strings.TrimSpace(fields[1]))
	cmd := &DeviceCommand{
		Name:        strings.TrimSpace(fields[0]),
		ID:          id,
		CallType:    strings.TrimSpace(fields[2]),
		RetType:     strings.TrimSpace(fields[3]),
		CodePlace:   strings.TrimSpace(fields[4]),
		FileName:    strings.TrimSpace(fields[5]),
		Mask:        strings.TrimSpace(fields[6]),
		AcceptsData: strings.TrimSpace(fields[7]) == "1",
		DataType:    strings.TrimSpace(fields[8]),
		ExtraData:   strings.TrimSpace(fields[9]),
		PredefOnly:  strings.TrimSpace(fields[10]) == "1",
	}
	if len(fields) > 11 {
		valuesCount, _ := strconv.Atoi(strings.TrimSpace(fields[11]))
		idx := 12
		for i := 0; i < valuesCount && idx+1 < len(fields); i++ {
			cmd.Values = append(cmd.Values, NameValue{
				Name:  strings.TrimSpace(fields[idx]),
				Value: strings.TrimSpace(fields[idx+1]),
			})
			idx += 2
		}
		if idx < len(fields) {
			cmd.Default = strings.TrimSpace(fields[idx])
		}
	}
	return cmd, nil
}
