// Package core provides the in-memory PDF object graph and stream decoding.
//
// # Objects and handles
//
// Every PDF value is an object of one fixed type, reached through a handle:
//
//   - [Null], [Bool], [Number] (integer or real, provenance kept),
//     [String] (literal or hex), [Name]
//   - [Array], [Dict], [Stream]
//   - [Reference], an unresolved "num gen R" link to an [ObjectSource]
//
// [Object] is the untyped handle; AsDict, AsArray and friends downcast it and
// return an empty handle (IsEmpty) on a type mismatch. Objects are reference
// counted. Constructors and Retain return owned handles that the caller must
// Release; accessors such as Array.At or Dict.Get return borrowed handles
// that stay valid while their container holds the value. Inserting a handle
// into a container hands the caller's reference over to the container.
//
// All objects of one graph are bound to a single [alloc.Allocator]. Inserting
// an object from another allocator, or a container into itself, panics.
//
// Clone copies containers, strings and stream data deeply; a Reference is
// copied by value and never dereferenced. IsModified reports whether an
// object or anything below it changed since construction or cloning.
//
// # Streams
//
// A [Stream] pairs a dictionary with raw bytes that are owned or read on
// demand from an io.ReaderAt. The Length entry is kept in sync with the raw
// size. An attached [Crypter] decrypts raw data on read and encrypts it on
// SetRawData.
//
// [Access] decodes a stream through the filters named by its Filter and
// DecodeParms entries, running the PNG or TIFF predictor after LZWDecode and
// FlateDecode where DecodeParms asks for one:
//
//	acc, err := core.NewAccess(a, core.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	if err := acc.Attach(stream, core.DecodeAll); err != nil {
//		return err
//	}
//	defer acc.Detach()
//	process(acc.Data())
//
// [DecodeStreams] decodes many streams concurrently.
//
// # Stores
//
// A [Store] maps object and generation numbers to objects and is the usual
// ObjectSource that References resolve through.
package core
