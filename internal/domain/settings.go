package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type SettingKey string

const (
	SettingBusinessName         SettingKey = "business_name"
	SettingSupportPhone         SettingKey = "support_phone"
	SettingBookingsOpen         SettingKey = "bookings_open"
	SettingNotificationsEnabled SettingKey = "notifications_enabled"
	SettingNotificationChannels SettingKey = "notification_channels"
	SettingCurrency             SettingKey = "currency"
)

// Settings is the closed set of runtime business settings. Each key has
// exactly one decoder below; anything else is rejected.
type Settings struct {
	BusinessName         string    `json:"business_name"`
	SupportPhone         string    `json:"support_phone"`
	BookingsOpen         bool      `json:"bookings_open"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	NotificationChannels []Channel `json:"notification_channels"`
	Currency             string    `json:"currency"`
}

func DefaultSettings() Settings {
	return Settings{
		BusinessName:         "Parcel Booking",
		BookingsOpen:         true,
		NotificationsEnabled: true,
		NotificationChannels: []Channel{ChannelSMS},
		Currency:             "NGN",
	}
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

var settingDecoders = map[SettingKey]func(*Settings, json.RawMessage) error{
	SettingBusinessName: func(s *Settings, raw json.RawMessage) error {
		v, err := decodeString(raw)
		if err != nil {
			return err
		}
		if v == "" {
			return fmt.Errorf("must not be empty")
		}
		s.BusinessName = v
		return nil
	},
	SettingSupportPhone: func(s *Settings, raw json.RawMessage) error {
		v, err := decodeString(raw)
		if err != nil {
			return err
		}
		s.SupportPhone = v
		return nil
	},
	SettingBookingsOpen: func(s *Settings, raw json.RawMessage) error {
		return json.Unmarshal(raw, &s.BookingsOpen)
	},
	SettingNotificationsEnabled: func(s *Settings, raw json.RawMessage) error {
		return json.Unmarshal(raw, &s.NotificationsEnabled)
	},
	SettingNotificationChannels: func(s *Settings, raw json.RawMessage) error {
		var values []string
		if err := json.Unmarshal(raw, &values); err != nil {
			return err
		}
		channels := make([]Channel, 0, len(values))
		seen := map[Channel]bool{}
		for _, v := range values {
			c := Channel(strings.ToLower(strings.TrimSpace(v)))
			if !c.IsValid() {
				return fmt.Errorf("unknown channel %q", v)
			}
			if !seen[c] {
				seen[c] = true
				channels = append(channels, c)
			}
		}
		s.NotificationChannels = channels
		return nil
	},
	SettingCurrency: func(s *Settings, raw json.RawMessage) error {
		v, err := decodeString(raw)
		if err != nil {
			return err
		}
		v = strings.ToUpper(v)
		if !currencyPattern.MatchString(v) {
			return fmt.Errorf("must be a 3-letter code")
		}
		s.Currency = v
		return nil
	},
}

func decodeString(raw json.RawMessage) (string, error) {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// Apply decodes one stored value into s.
func (s *Settings) Apply(key SettingKey, raw json.RawMessage) error {
	decode, ok := settingDecoders[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	if err := decode(s, raw); err != nil {
		return ValidationError{Field: string(key), Msg: err.Error()}
	}
	return nil
}

// DecodeSettings builds Settings from stored key/value rows on top of the
// defaults. Any unknown key or malformed value fails the whole load.
func DecodeSettings(rows map[SettingKey]json.RawMessage) (Settings, error) {
	s := DefaultSettings()
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.Apply(SettingKey(k), rows[SettingKey(k)]); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

// ChannelEnabled reports whether notifications should be logged for c.
func (s Settings) ChannelEnabled(c Channel) bool {
	if !s.NotificationsEnabled {
		return false
	}
	for _, enabled := range s.NotificationChannels {
		if enabled == c {
			return true
		}
	}
	return false
}

// Value returns the current typed value stored under key, or nil for an
// unknown key.
func (s Settings) Value(key SettingKey) any {
	switch key {
	case SettingBusinessName:
		return s.BusinessName
	case SettingSupportPhone:
		return s.SupportPhone
	case SettingBookingsOpen:
		return s.BookingsOpen
	case SettingNotificationsEnabled:
		return s.NotificationsEnabled
	case SettingNotificationChannels:
		return s.NotificationChannels
	case SettingCurrency:
		return s.Currency
	}
	return nil
}
