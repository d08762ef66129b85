/*
The sync package implements the agent's sync cycle. A cycle brings the local
output folder up to date with the remote manifest.

Each cycle:
1) Fetches the manifest. If it can't be fetched, parsed, or validated, the
   cycle fails without touching any files.
2) Walks the manifest entries in order, one at a time. Entries whose file
   already exists in the output folder are skipped. Missing files are
   downloaded.
3) Logs a summary of what was downloaded, what failed, and what was skipped.

A single failed download doesn't fail the cycle. The file is still missing,
so the next cycle will try it again.

The sync only adds files. Files in the output folder that aren't in the
manifest are left alone, and existing files are never re-downloaded even if
their contents changed on the server.
*/
package sync
