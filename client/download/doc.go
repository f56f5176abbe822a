// Package download streams HTTP response bodies to disk with optional
// checksum validation and progress reporting. It backs the saving of
// file results, such as PDF reports, to local storage.
//
// [Stream] writes the body to a temporary file alongside the destination
// path, creating missing parent directories, then renames it on success:
//
//	err := download.Stream(ctx, resp.Body, resp.ContentLength, destPath, logger,
//		download.WithProgress(),
//	)
//
// Most callers should use [github.com/adamwoolhether/appchains/client.Client.Download]
// or File.SaveAs from the report package, which invoke Stream internally.
package download
