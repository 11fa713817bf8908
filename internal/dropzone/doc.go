// Package dropzone talks to the Dropzone app that launches the action.
//
// Dropzone reads one message per stdout line, for example
// "Begin_Message:::Uploading notes.txt to Google Drive..." or
// "Save_Value:::folder_name:::Reports". Anything else the action prints
// corrupts the protocol, so diagnostics go to stderr. Prompts are shown with
// the cocoaDialog binary shipped in Dropzone's support folder.
package dropzone
