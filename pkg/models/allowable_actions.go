package models

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// AllowableActions maps action names (canDeleteObject, canGetChildren, ...)
// to their flag.
type AllowableActions struct {
	Actions map[string]bool
}

func (a *AllowableActions) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		Items []struct {
			XMLName xml.Name
			Value   string `xml:",chardata"`
		} `xml:",any"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	a.Actions = make(map[string]bool, len(raw.Items))
	for _, item := range raw.Items {
		v, err := strconv.ParseBool(strings.TrimSpace(item.Value))
		if err != nil {
			continue
		}
		a.Actions[item.XMLName.Local] = v
	}
	return nil
}

// Allowed reports whether the action is present and set.
func (a *AllowableActions) Allowed(action string) bool {
	if a == nil {
		return false
	}
	return a.Actions[action]
}
