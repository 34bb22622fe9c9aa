package validation

// CustomMessage returns per-tag overrides for field (the JSON name).
func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"email": {
			"required": "email is required",
			"email":    "email must be a valid email address",
			"max":      "email must be at most 255 characters",
		},
		"name": {
			"required": "name is required",
			"max":      "name must be at most 100 characters",
		},
		"password": {
			"min": "password must be at least 8 characters",
			"max": "password must be at most 128 characters",
		},
		"new_password": {
			"required": "new password is required",
			"min":      "new password must be at least 8 characters",
		},
		"confirm_password": {
			"eqfield": "password confirmation does not match",
		},
		"role": {
			"oneof": "role must be admin or user",
		},
	}
	return customValidationMessages[field]
}
