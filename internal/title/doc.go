// Package title implements the article title equivalence used by the game.
//
// Encyclopedia titles reach the game in several spellings: as typed in the
// challenge catalog ("Mount Everest"), as they appear in link paths
// ("Mount_Everest"), or as returned by the content API with different
// capitalization. Two titles name the same article when their normalized
// forms are equal. Normalization is the only equality notion used for win
// detection and history comparison; raw strings are kept for display.
package title
