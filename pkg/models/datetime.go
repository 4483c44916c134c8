package models

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseDateTime parses an xs:dateTime value. A missing zone is read as UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid xs:dateTime %q", s)
}

// DateTime embeds time.Time and reads itself from element text.
type DateTime struct {
	time.Time
}

func (d *DateTime) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var text string
	if err := dec.DecodeElement(&text, &start); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDateTime(text)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
