// Package merge copies extracted component trees into the installation
// directory.
//
// Every immediate subdirectory of the extraction root is one component; its
// whole tree is copied below the same name under the installation root,
// overwriting files already there. Components fail independently: one broken
// copy is logged and counted, the remaining components still merge.
package merge
