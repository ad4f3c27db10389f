// README: Opaque identifier type shared across modules.
package types

type ID string

func (id ID) String() string { return string(id) }
