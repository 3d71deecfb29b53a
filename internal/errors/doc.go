// Package errors carries Go-level failures: bad input, unknown forms, broken
// rule files, storage trouble and missing sessions.
//
// Problems found on a character sheet are not errors. They are reported as
// sheet.Alert values and never travel through this package.
//
// Creating errors:
//
//	err := errors.NotFound("session not found")
//	err := errors.InvalidArgumentf("unknown form %q", name)
//
// Adding metadata:
//
//	err := errors.NotFound("session not found").WithMeta("session_id", id)
//
// Wrapping keeps the code of an *Error cause, anything else becomes Internal:
//
//	if err := repo.Update(ctx, input); err != nil {
//	    return nil, errors.Wrap(err, "failed to save draft")
//	}
//
// Collecting field problems:
//
//	vb := errors.NewValidationBuilder()
//	if cfg.Rules == nil {
//	    vb.RequiredField("Rules")
//	}
//	return vb.Build()
//
// The CLI maps codes to exit statuses with Code.ExitCode.
package errors
