// Package farm decodes stored farmer profiles into scan input.
//
// Profiles are written by the mobile app and are loosely typed: crop slots
// live under farmActivityLogs, each slot maps push ids to log entries, and a
// slot may also carry its own cropName. Anything that does not fit the
// expected shape is skipped rather than rejected.
package farm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/i474232898/pest-advisory/internal/risk"
)

// ErrMalformed is returned when a record is not a JSON object.
var ErrMalformed = errors.New("farmer record is not a JSON object")

// Decode turns a raw profile into a FarmerRecord with slots and entries in
// key order. The district is read from the top level, falling back to
// farmDetails.district.
func Decode(uid string, raw json.RawMessage) (risk.FarmerRecord, error) {
	top, ok := object(raw)
	if !ok {
		return risk.FarmerRecord{}, fmt.Errorf("farmer %s: %w", uid, ErrMalformed)
	}

	rec := risk.FarmerRecord{
		UID:      uid,
		District: str(top["district"]),
		SoilType: str(top["soilType"]),
		FCMToken: str(top["fcmToken"]),
	}
	if rec.District == "" {
		if details, ok := object(top["farmDetails"]); ok {
			rec.District = str(details["district"])
		}
	}

	logs, _ := object(top["farmActivityLogs"])
	for key, rawSlot := range logs {
		slotFields, ok := object(rawSlot)
		if !ok {
			continue
		}
		slot := risk.CropSlot{Key: key}
		for entryKey, rawEntry := range slotFields {
			if entryKey == "cropName" {
				slot.CropName = str(rawEntry)
				continue
			}
			if entry, ok := decodeEntry(entryKey, rawEntry); ok {
				slot.Entries = append(slot.Entries, entry)
			}
		}
		sort.Slice(slot.Entries, func(i, j int) bool { return slot.Entries[i].Key < slot.Entries[j].Key })
		rec.Slots = append(rec.Slots, slot)
	}
	sort.Slice(rec.Slots, func(i, j int) bool { return rec.Slots[i].Key < rec.Slots[j].Key })
	return rec, nil
}

func decodeEntry(key string, raw json.RawMessage) (risk.LogEntry, bool) {
	fields, ok := object(raw)
	if !ok {
		return risk.LogEntry{}, false
	}
	entry := risk.LogEntry{
		Key:                key,
		CropName:           str(fields["cropName"]),
		Symptoms:           str(fields["symptoms"]),
		LastIrrigationDate: dateText(fields["lastIrrigationDate"]),
		PestDiseaseName:    str(fields["pestDiseaseName"]),
	}
	if soil, ok := object(fields["soilTest"]); ok {
		entry.SoilTest = make(map[string]float64, len(soil))
		for nutrient, v := range soil {
			if f, ok := number(v); ok {
				entry.SoilTest[nutrient] = f
			}
		}
	}
	return entry, true
}

func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// str returns a JSON string value; any other JSON type reads as empty.
func str(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// dateText accepts a date string or a unix-seconds number.
func dateText(raw json.RawMessage) string {
	if s := str(raw); s != "" {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	if secs, err := n.Int64(); err == nil && secs > 0 {
		return strconv.FormatInt(secs, 10)
	}
	return ""
}

// number accepts JSON numbers and numeric strings.
// number reads a JSON number or numeric string. null is absent, not zero.
func number(raw json.RawMessage) (float64, bool) {
	var f *float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f == nil {
			return 0, false
		}
		return *f, true
	}
	if s := str(raw); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
