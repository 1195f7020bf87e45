// Package builtin provides the rule classes shipped with mapcheck.
//
// Call Register once at startup to install them:
//
//	reg := rules.NewRegistry()
//	builtin.Register(reg)
//
// Module and class names:
//
//	filesize.MaxFileSize   max_bytes
//	filename.NamePattern   pattern, max_length
//	datafile.Version       allowed
//	datafile.ItemTypes     required, forbidden
//	expression.CEL         expression, message
//
// Every factory validates its params and fails with a *rules.ParamError.
// Rules may be built without a map for documentation; Explain works in
// that case and Evaluate returns ErrNoMap.
package builtin
