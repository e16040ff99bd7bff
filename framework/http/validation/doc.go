// Package validation checks flat string maps against pipe-separated rule
// strings ("required|integer|gte:0"). The framework uses it to reject malformed route definitions
// before they reach the route table.
//
//	err := validation.Validate(map[string]string{
//	    "name":       "blog_show",
//	    "controller": "blog:PostController:show",
//	}, validation.Rules{
//	    "name":       "required|alpha_dash",
//	    "controller": `required|regex:^[^:]+:[^:]+:[^:]+$`,
//	})
//
// Rules run in order and stop at the first failure for a field:
//   - required         present and non-blank
//   - sometimes        skip the remaining rules when the value is empty
//   - integer          parses as an int
//   - gte:n            numeric value ≥ n
//   - max:n            at most n UTF-8 characters
//   - in:a,b,c         one of the listed values
//   - alpha_dash       letters, digits, dashes and underscores
//   - regex:pattern    must be the last rule; may contain "|"
package validation
