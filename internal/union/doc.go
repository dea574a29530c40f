// Package union provides the record types for IBEW local unions and the join
// that combines directory data with UnionFacts membership counts.
//
// Records move through three shapes during a run: a Summary from the directory
// state listing, a Detail once trade classifications and county coverage are
// attached, and a Record after the membership count is merged in. Local ids are
// normalised with NormalizeLocalID so both sources agree on the join key.
package union
