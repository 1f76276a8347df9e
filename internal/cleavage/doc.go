// Package cleavage detects proprotein-convertase cleavage sites in
// normalized precursor sequences.
//
// PCSK1/3-family convertases cut immediately after paired basic residues
// (KK, KR, RR, RK). Not every dibasic pair is a real cleavage site: pairs
// followed by certain residues are poor substrates, pairs embedded in longer
// basic runs are usually carboxypeptidase trimming targets rather than cut
// points, and physiological cut points keep a minimum distance from each
// other. The detector encodes these rules as two selectable strictness modes.
//
// Design decision: The strict-mode spacing rule is implemented as an explicit
// two-pass algorithm (collect permissive candidates, then collapse neighbors
// closer than the minimum spacing) instead of a self-referential regex
// lookahead. The recursive pattern the rule was originally expressed with is
// fragile and behaves differently across regex engines; plain iteration with
// explicit state is equivalent and testable.
package cleavage
