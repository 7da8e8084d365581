package dd

// Merge combines the parse results of several sources into one File, in the
// order given. Parameter rows are concatenated (a parameter may legitimately
// repeat rows across source files, so duplicates are kept and source order is
// preserved); set tuples are unioned (duplicates collapse). The asymmetry is
// deliberate and mirrors the semantics of the two record kinds.
//
// Callers that parse sources concurrently must still pass files here in a
// fixed order (e.g. sorted path order) so the concatenation is reproducible.
func Merge(files ...*File) *File {
	out := NewFile()
	for _, f := range files {
		if f == nil {
			continue
		}
		for name, rows := range f.Params {
			out.Params[name] = append(out.Params[name], rows...)
		}
		for name, set := range f.Sets {
			dst := out.Sets[name]
			if dst == nil {
				dst = NewTupleSet()
				out.Sets[name] = dst
			}
			dst.Union(set)
		}
	}
	return out
}
