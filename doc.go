// Package argcheck provides declarative argument contracts for functions.
//
// - Check declarations (type, membership, numeric range, element-type
// descriptor validity) bound to named parameters
// - A Binder that resolves each declaration against the actual call
// arguments (keyword first, then position) and enforces it behind a Gate
// - A stable error model via Issues (JSON Pointer, code, message), shared
// with the ndarray verifier
//
// Design policy:
// - Keep only public APIs in the root package; element-type descriptors live
// under dtype/, the normalized container and verifier under ndarray/.
// - Checks on one argument compose by stacking Attach decorators.
// - Declarations that do not apply to a call (unknown parameter, argument
// not supplied, argument equal to its default) are skipped, never errors.
//
// Typical usage:
//
//	sig := argcheck.MustSignature(argcheck.Arg("dim"), argcheck.Opt("dtype", nil))
//	b := argcheck.NewBinder(cfg) // cfg implements argcheck.Gate
//	newDat := argcheck.Attach[*Dat](b,
//		argcheck.Within("dim", ErrDimType, 1, 3),
//		argcheck.ValidDType("dtype", ErrDataType),
//	)(argcheck.Define(sig, makeDat))
//
//	d, err := newDat.Call(2, "float32")
package argcheck
