/*Package interval implements loading, overlap matching and distance
  computation for sets of genomic coordinate intervals represented by
  tab-delimited ([chrom, start, end, ...]) files.
  Intervals are kept per chromosome, sorted ascending by start; that
  ordering is assumed, not established, so inputs must come from an
  external sort.  Overlapping records are tracked separately with their
  full payload columns, not merged, since classification output must
  reproduce input records verbatim.
  It assumes every position fits in a PosType, which is currently defined
  as int32 since that's what BAM files are limited to.
*/
package interval
