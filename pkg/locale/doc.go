/*
Package locale resolves translation keys for the wizard.

Catalogs follow a typed schema (Catalog) checked against a fixed key set. The fr, en and nl
catalogs are embedded; external catalogs from a directory (DirSource) are overlaid on top and
fall back key by key to the embedded text, so a broken or partial resource only degrades
wording. Language negotiation uses golang.org/x/text/language.
*/
package locale
