package permissions

// Resolve maps an actor and a stored role→capability matrix to the actor's
// effective permission set. It is deterministic, performs no I/O, and never
// fails: the absence of a capability is represented in the output.
//
// The super-role always resolves to the all-true set, ignoring the matrix.
// A role absent from the matrix (including an unrecognized one) resolves to
// the empty set — unknown roles fail closed.
func Resolve(actor Actor, matrix Matrix) PermissionSet {
	if actor.Role == RoleSuperuser {
		return FullSet()
	}

	if set, ok := matrix[actor.Role]; ok {
		return set.Clone()
	}
	return EmptySet()
}
