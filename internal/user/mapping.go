package user

import "time"

// mapRecord builds the canonical account from a source record whose field
// names may be snake_case (webhook, provider API) or camelCase (client calls).
// Snake_case wins, camelCase is the fallback, absent fields stay null.
func mapRecord(id string, record map[string]any) *Account {
	return &Account{
		ID:        id,
		Email:     emailFrom(record),
		FirstName: stringField(record, "first_name", "firstName"),
		LastName:  stringField(record, "last_name", "lastName"),
		CreatedAt: creationTime(record),
		Raw:       record,
	}
}

func stringField(record map[string]any, keys ...string) *string {
	for _, key := range keys {
		if value, ok := record[key].(string); ok && value != "" {
			return &value
		}
	}
	return nil
}

// emailFrom prefers a flat email field; authoritative Clerk records instead
// carry an email_addresses array, so the first entry is the last fallback.
func emailFrom(record map[string]any) *string {
	if email := stringField(record, "email"); email != nil {
		return email
	}
	addresses, ok := record["email_addresses"].([]any)
	if !ok || len(addresses) == 0 {
		return nil
	}
	first, ok := addresses[0].(map[string]any)
	if !ok {
		return nil
	}
	return stringField(first, "email_address", "emailAddress")
}

// creationTime accepts the provider's epoch-millisecond numbers or RFC 3339
// strings; anything else yields the zero time so storage defaults to now.
func creationTime(record map[string]any) time.Time {
	for _, key := range []string{"created_at", "createdAt"} {
		switch value := record[key].(type) {
		case float64:
			return time.UnixMilli(int64(value)).UTC()
		case string:
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
