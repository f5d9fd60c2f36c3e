/*
Package chardet detects the character encoding of a file and decodes it
into lines.

	  bytes --> BOM sniff --> ASCII test --> JIS escapes --> scoring
	              |               |              |              |
	           UTF-8/16/32      ASCII           JIS       SJIS/EUC/UTF-8
	                                                      (or default)

🎯 Purpose:
- BOM sniffing for the Unicode family, UTF-32 marks before UTF-16
- A statistical scorer for Shift_JIS, EUC-JP, and UTF-8 over a sample
  drawn from the head, middle, and tail of the file
- A fixed registry mapping encoding keys to code page, BOM flag, and
  display name, with exactly one default fallback
- Tolerant line decoding (CR, LF, or CRLF) via golang.org/x/text, with
  malformed bytes replaced rather than fatal

📝 Design Philosophy:
Scores are computed independently per encoding: the byte ranges overlap,
so one file legitimately accumulates evidence in several categories. Only
a strict maximum wins; anything ambiguous falls back to the registry
default instead of oscillating between near ties.
*/
package chardet
