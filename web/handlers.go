package web

import (
	"bytes"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mogaika/joker_tool/pack"
	"github.com/mogaika/joker_tool/pack/gar"
	"github.com/mogaika/joker_tool/status"
	"github.com/mogaika/joker_tool/vfs"
	"github.com/mogaika/joker_tool/webutils"
)

// uploads are serialized, archive members repack whole archive file
var uploadLock sync.Mutex

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// openArchive returns archive file of ServerDirectory as directory
func openArchive(file string) (*gar.Driver, error) {
	if pack.FormatOf(file) != strings.ToUpper(gar.FileExtension) {
		return nil, errors.Errorf("File '%s' is not an archive", file)
	}
	f, err := vfs.DirectoryGetFile(ServerDirectory, file)
	if err != nil {
		return nil, err
	}
	return gar.NewDriver(f)
}

func readRaw(d vfs.Directory, name string) ([]byte, error) {
	f, err := vfs.DirectoryGetFile(d, name)
	if err != nil {
		return nil, err
	}
	return vfs.ReadFile(f)
}

func HandlerAjaxPack(w http.ResponseWriter, r *http.Request) {
	if files, err := ServerDirectory.List(); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

func HandlerAjaxPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	if doc, err := pack.Open(ServerDirectory, file); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, doc)
	}
}

func HandlerAjaxPackFileParam(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	param := mux.Vars(r)["param"]
	d, err := openArchive(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if doc, err := pack.Open(d, param); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, doc)
	}
}

func writeYaml(w http.ResponseWriter, d vfs.Directory, name string) {
	doc, err := pack.Open(d, name)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	data, err := pack.MarshalYAML(doc)
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to marshal '%s'", name))
		return
	}
	webutils.WriteFile(w, data, name+".yaml")
}

func HandlerYamlPackFile(w http.ResponseWriter, r *http.Request) {
	writeYaml(w, ServerDirectory, mux.Vars(r)["file"])
}

func HandlerYamlPackFileParam(w http.ResponseWriter, r *http.Request) {
	d, err := openArchive(mux.Vars(r)["file"])
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	writeYaml(w, d, mux.Vars(r)["param"])
}

func HandlerDumpPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	if data, err := readRaw(ServerDirectory, file); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteFile(w, data, file)
	}
}

func HandlerDumpPackFileParam(w http.ResponseWriter, r *http.Request) {
	param := mux.Vars(r)["param"]
	d, err := openArchive(mux.Vars(r)["file"])
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if data, err := readRaw(d, param); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteFile(w, data, param)
	}
}

type uploadResult struct {
	File string `json:"file"`
	Size int    `json:"size"`
}

// readUpload parses posted yaml document of format named by name
func readUpload(r *http.Request, name string) (interface{}, error) {
	body, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		return nil, err
	}
	return pack.DecodeYAML(name, bytes.NewReader(body))
}

func save(w http.ResponseWriter, d vfs.Directory, name, path string, doc interface{}) {
	data, err := pack.Save(d, name, doc)
	if err != nil {
		status.Error("Failed to save %s: %v", path, err)
		webutils.WriteError(w, err)
		return
	}
	status.Info("Saved %s (%d bytes)", path, len(data))
	webutils.WriteJson(w, &uploadResult{File: path, Size: len(data)})
}

func HandlerUploadPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	doc, err := readUpload(r, file)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return
	}

	uploadLock.Lock()
	defer uploadLock.Unlock()
	save(w, ServerDirectory, file, file, doc)
}

func HandlerUploadPackFileParam(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	param := mux.Vars(r)["param"]
	doc, err := readUpload(r, param)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, err)
		return
	}

	uploadLock.Lock()
	defer uploadLock.Unlock()
	d, err := openArchive(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	save(w, d, param, file+"/"+param, doc)
}

func HandlerStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Status websocket upgrade failed")
		return
	}
	status.Default.Attach(conn)
}
