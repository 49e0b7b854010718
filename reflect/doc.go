/*
Package reflect provides a runtime type registry for the ECS core.

A Type is an immutable descriptor built once per Go type and cached in a
process-wide registry: a name, a short name with template-style arguments
stripped, size, alignment and a set of attached traits (Constructible,
Fields, Array, Dictionary, Enum, Mask, StringConversion, Nullable). Traits
are attached once, at build time, through a Builder; attaching the same
trait twice or registering a duplicate name is fatal, mirroring the
source engine's CUBOS_REFLECT contract.

Generic code obtains a Type with Reflect[T](), which lazily builds and
caches the descriptor for T the first time it is requested.
*/
package reflect
