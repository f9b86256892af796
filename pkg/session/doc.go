/*
Package session implements ownership of dialogue sessions.

The Manager is the only writer of the session store. It serializes every
read-modify-write of one session behind a per-key mutex (reference counted so
idle keys do not leak) while sessions of different users proceed in parallel.
*/
package session
