package users

import "encoding/json"

// User is a single record of the collection
type User struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Age  float64 `json:"age"`
}

// UnmarshalJSON decodes a stored user. A name that is not text is read as
// empty, so the record stays listable and never matches a search.
func (u *User) UnmarshalJSON(data []byte) error {
	var stored struct {
		ID   int64           `json:"id"`
		Name json.RawMessage `json:"name"`
		Age  float64         `json:"age"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}

	name, _ := rawString(stored.Name)
	*u = User{
		ID:   stored.ID,
		Name: name,
		Age:  stored.Age,
	}
	return nil
}

// CreateUserRequest represents the request to create a user.
// Fields are kept raw so that a missing field and a field of the wrong JSON
// type can be told apart during validation.
type CreateUserRequest struct {
	Name json.RawMessage `json:"name"`
	Age  json.RawMessage `json:"age"`
}

// UpdateUserRequest represents a partial update of a user
type UpdateUserRequest struct {
	Name json.RawMessage `json:"name"`
	Age  json.RawMessage `json:"age"`
}

// rawString returns the string held by raw and whether raw is a JSON string
func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// rawNumber returns the number held by raw and whether raw is a JSON number
func rawNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	switch c := raw[0]; {
	case c == '-', c >= '0' && c <= '9':
	default:
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// present reports whether the field appeared in the request body
func present(raw json.RawMessage) bool {
	return len(raw) > 0
}
