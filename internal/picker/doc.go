// Package picker lets the user choose the Drive folder that receives the upload.
//
// The folders under My Drive are offered in a cocoaDialog dropdown with the
// previously chosen folder first. "New folder" and an empty Drive both lead to
// an input box whose name is created as a new top-level folder. The chosen
// title is saved through Dropzone for the next run.
package picker
